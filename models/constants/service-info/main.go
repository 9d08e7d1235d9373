package serviceInfo

import "fmt"

type ServiceInfo string

var (
	SERVICE_NAME        ServiceInfo = "RGA Knockout Service"
	SERVICE_WELCOME     ServiceInfo = "Welcome to the recessive gene analysis (RGA) knockout API!"
	SERVICE_DESCRIPTION ServiceInfo = "Knockout analysis queries by individual, gene and variant over a flat search index."

	SERVICE_ARTIFACT    ServiceInfo = "rga"
	SERVICE_VERSION     ServiceInfo = "0.1.0"
	SERVICE_TYPE_NO_VER ServiceInfo = ServiceInfo(fmt.Sprintf("org.rga:%s", SERVICE_ARTIFACT))
	SERVICE_ID          ServiceInfo = SERVICE_TYPE_NO_VER
	SERVICE_TYPE        ServiceInfo = ServiceInfo(fmt.Sprintf("%s:%s", SERVICE_TYPE_NO_VER, SERVICE_VERSION))
)
