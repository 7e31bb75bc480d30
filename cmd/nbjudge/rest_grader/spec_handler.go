package restgrader

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/criyle/go-nbjudge/cmd/nbjudge/model"
	"github.com/criyle/go-nbjudge/store"
	"github.com/gin-gonic/gin"
)

const maxSpecSize = 16 << 20

type specHandle struct {
	specs store.SpecStore
}

// NewSpecHandle creates a new expected-output specification handle
func NewSpecHandle(specs store.SpecStore) Register {
	return &specHandle{
		specs: specs,
	}
}

type specURI struct {
	ID string `uri:"id" binding:"required"`
}

func (s *specHandle) Register(r *gin.Engine) {
	r.GET("/spec", s.specGet)
	r.POST("/spec", s.specPost)
	r.GET("/spec/:id", s.specIDGet)
	r.PUT("/spec/:id", s.specIDPut)
	r.DELETE("/spec/:id", s.specIDDelete)
}

func (s *specHandle) specGet(c *gin.Context) {
	c.JSON(http.StatusOK, s.specs.List())
}

func (s *specHandle) specPost(c *gin.Context) {
	content, err := readSpec(c)
	if err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	id, err := s.specs.Add(specName(c), content)
	if err != nil {
		c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, id)
}

func (s *specHandle) specIDGet(c *gin.Context) {
	var uri specURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	e, err := s.specs.Get(uri.ID)
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	if err != nil {
		c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, err.Error())
		return
	}
	sum, err := model.ConvertEntry(e)
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *specHandle) specIDPut(c *gin.Context) {
	var uri specURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	content, err := readSpec(c)
	if err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	if err := s.specs.Put(uri.ID, specName(c), content); err != nil {
		c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, uri.ID)
}

func (s *specHandle) specIDDelete(c *gin.Context) {
	var uri specURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if !s.specs.Remove(uri.ID) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

func readSpec(c *gin.Context) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request.Body, maxSpecSize))
}

// specName picks the stored format from the content type
func specName(c *gin.Context) string {
	ct := c.ContentType()
	if strings.Contains(ct, "yaml") {
		return store.SpecFileName + ".yaml"
	}
	return store.SpecFileName + ".json"
}
