// Package v1 contains the types of the sensorlink manager REST API.
package v1
