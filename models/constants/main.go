package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout the knockout engine and
	its associated services.
*/
type KnockoutType string
type FilterStatus string
type SearchOperation string
type SortDirection string
