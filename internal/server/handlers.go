package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Patrick-Hull/MySQLWrapper/pkg/mysqlwrapper"
)

type selectRequest struct {
	Database      string              `json:"database"`
	Table         string              `json:"table"`
	Columns       []string            `json:"columns"`
	Criteria      mysqlwrapper.Fields `json:"criteria"`
	Match         mysqlwrapper.Match  `json:"match"`
	MatchAny      bool                `json:"match_any"`
	OrderBy       *mysqlwrapper.Order `json:"order_by"`
	Limit         int                 `json:"limit"`
	Cache         bool                `json:"cache"`
	ClearCache    bool                `json:"clear_cache"`
	CacheDuration int                 `json:"cache_duration"` // seconds
	Datatable     bool                `json:"datatable"`
}

type writeRequest struct {
	Database string              `json:"database"`
	Table    string              `json:"table"`
	Data     mysqlwrapper.Fields `json:"data"`
	Criteria mysqlwrapper.Fields `json:"criteria"`
}

func (s *Server) database(name string) string {
	if name != "" {
		return name
	}
	return s.client.DefaultDatabase()
}

func (s *Server) handleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	q := s.client.Select()
	q.Database = s.database(req.Database)
	q.Table = req.Table
	q.Columns = req.Columns
	q.Criteria = req.Criteria
	q.Match = req.Match
	q.MatchAny = req.MatchAny
	q.OrderBy = req.OrderBy
	q.Limit = req.Limit
	q.Cache = req.Cache
	q.ClearCache = req.ClearCache
	q.Datatable = req.Datatable
	if req.CacheDuration > 0 {
		q.CacheDuration = time.Duration(req.CacheDuration) * time.Second
	}

	res, err := q.Execute(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mysqlwrapper.SelectRecord(res))
}

func (s *Server) handleInsert(c *gin.Context) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	q := s.client.Insert()
	q.Database = s.database(req.Database)
	q.Table = req.Table
	q.Data = req.Data

	res, err := q.Execute(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mysqlwrapper.InsertRecord(res))
}

func (s *Server) handleUpdate(c *gin.Context) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	q := s.client.Update()
	q.Database = s.database(req.Database)
	q.Table = req.Table
	q.Data = req.Data
	q.Criteria = req.Criteria

	res, err := q.Execute(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mysqlwrapper.UpdateRecord(res))
}

func (s *Server) handleDelete(c *gin.Context) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	q := s.client.Delete()
	q.Database = s.database(req.Database)
	q.Table = req.Table
	q.Criteria = req.Criteria

	res, err := q.Execute(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mysqlwrapper.DeleteRecord(res))
}
