package restgrader

import "github.com/gin-gonic/gin"

// Register registers grader the handler
type Register interface {
	Register(*gin.Engine)
}
