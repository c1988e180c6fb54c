package handler

import (
	"errors"
	"net/http"

	"github.com/devreg/devreg/internal/record"
	"github.com/devreg/devreg/internal/record/repository"
	"github.com/devreg/devreg/internal/record/service"
	"github.com/devreg/devreg/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RegisterRecordRoutes mounts the record API on r. Write routes run behind
// writeGuard when it is non-nil.
func RegisterRecordRoutes(r gin.IRouter, svc *service.Service, writeGuard gin.HandlerFunc) {
	g := r.Group("/api/records")
	var writes []gin.HandlerFunc
	if writeGuard != nil {
		writes = append(writes, writeGuard)
	}

	g.GET("/one", func(c *gin.Context) {
		doc, err := svc.Get(c.Request.Context(), record.BySerial(c.Query("serial")))
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			internalError(c, err)
			return
		}
		writeRecord(c, http.StatusOK, doc)
	})

	g.GET("/count", func(c *gin.Context) {
		n, err := svc.Count(c.Request.Context(), record.BySerial(c.Query("serial")))
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": n})
	})

	g.GET("", func(c *gin.Context) {
		docs, err := svc.Find(c.Request.Context(), record.BySerial(c.Query("serial")))
		if err != nil {
			internalError(c, err)
			return
		}
		b, err := record.MarshalExtJSONArray(docs)
		if err != nil {
			internalError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", b)
	})

	g.POST("", append(writes, func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var doc record.Document
		if len(body) == 0 {
			doc, err = record.Sample()
		} else {
			doc, err = record.Parse(body)
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		stored, err := svc.Insert(c.Request.Context(), doc)
		if err != nil {
			internalError(c, err)
			return
		}
		writeRecord(c, http.StatusCreated, stored)
	})...)

	g.PATCH("", append(writes, func(c *gin.Context) {
		serial := c.Query("serial")
		if serial == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "serial query parameter is required"})
			return
		}
		var req struct {
			Region interface{} `json:"region" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := svc.UpdateMany(c.Request.Context(), record.BySerial(serial), record.SetRegion(req.Region))
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})...)
}

func writeRecord(c *gin.Context, status int, doc record.Document) {
	b, err := record.MarshalExtJSON(doc)
	if err != nil {
		internalError(c, err)
		return
	}
	c.Data(status, "application/json", b)
}

func internalError(c *gin.Context, err error) {
	logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
