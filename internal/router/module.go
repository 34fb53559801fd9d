package router

import "github.com/gin-gonic/gin"

// Module registers the routes of one feature on a RouterGroup.
type Module interface {
	Register(rg *gin.RouterGroup)
}
