// Package server exposes the query executors over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Patrick-Hull/MySQLWrapper/pkg/mysqlwrapper"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

// Server is a JSON gateway in front of a mysqlwrapper.Client.
type Server struct {
	client *mysqlwrapper.Client
	engine *gin.Engine
}

// New builds the gin engine and registers the routes.
func New(client *mysqlwrapper.Client) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), accessLog())

	s := &Server{client: client, engine: engine}
	engine.GET("/health", s.health)
	engine.POST("/select", s.handleSelect)
	engine.POST("/insert", s.handleInsert)
	engine.POST("/update", s.handleUpdate)
	engine.POST("/delete", s.handleDelete)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[HTTP] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	log.Printf("[HTTP] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[HTTP] %s %s %d (Duration: %v, Request ID: %s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.GetString("request_id"))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail answers with the error record. Input and schema problems are the
// caller's fault, everything else is a server error.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch mysqlwrapper.KindOf(err) {
	case mysqlwrapper.KindValidation, mysqlwrapper.KindSchema:
		status = http.StatusBadRequest
	}
	c.JSON(status, mysqlwrapper.ErrorRecord(err))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, mysqlwrapper.Record{Status: false, Msg: "Invalid request", Error: err.Error()})
}
