package dtos

import "time"

type GeneralErrorResponseDto struct {
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Errors    []GeneralError `json:"errors"`
}

type GeneralError struct {
	Message string `json:"message"`
}

type KnockoutCountResponseDTO struct {
	Collection string `json:"collection"`
	Count      int64  `json:"count"`
}

type KnockoutPurgeResponseDTO struct {
	Collection string `json:"collection"`
	Deleted    int64  `json:"deleted"`
}
