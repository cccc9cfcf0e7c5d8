package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/colonyops/beacon/internal/core/alerts"
	"github.com/colonyops/beacon/internal/core/live"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/toast"
)

type notificationList struct {
	Notifications []notify.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
	Capacity      int                   `json:"capacity"`
}

func (s *Server) listNotifications(c *gin.Context) {
	items := s.deps.Notes.List()
	if c.Query("unread") == "true" {
		filtered := items[:0]
		for _, n := range items {
			if !n.Read {
				filtered = append(filtered, n)
			}
		}
		items = filtered
	}
	ok(c, http.StatusOK, notificationList{
		Notifications: items,
		Unread:        s.deps.Notes.UnreadCount(),
		Capacity:      s.deps.Notes.Capacity(),
	})
}

func (s *Server) unreadCount(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"unread": s.deps.Notes.UnreadCount()})
}

func (s *Server) markRead(c *gin.Context) {
	id := c.Param("id")
	s.deps.Notes.MarkAsRead(id)
	n, found := s.deps.Notes.Get(id)
	if !found {
		fail(c, http.StatusNotFound, "notification not found", nil)
		return
	}
	ok(c, http.StatusOK, gin.H{"notification": n, "unread": s.deps.Notes.UnreadCount()})
}

func (s *Server) markAllRead(c *gin.Context) {
	s.deps.Notes.MarkAllAsRead()
	ok(c, http.StatusOK, gin.H{"unread": 0})
}

func (s *Server) clearNotifications(c *gin.Context) {
	s.deps.Notes.Clear()
	c.Status(http.StatusNoContent)
}

func (s *Server) listToasts(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"toasts": s.deps.Toasts.List(), "max_visible": s.deps.Toasts.MaxVisible()})
}

// ToastRequest is the body of POST /api/toasts.
type ToastRequest struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// DurationMS overrides the category default; zero keeps it and a
	// negative value makes the toast persistent.
	DurationMS int  `json:"duration_ms"`
	Persistent bool `json:"persistent"`
	// Log also records the message in the notification log.
	Log bool `json:"log"`
}

func (s *Server) createToast(c *gin.Context) {
	var req ToastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Title == "" && req.Description == "" {
		fail(c, http.StatusBadRequest, "title or description is required", errors.New("empty toast"))
		return
	}

	cat := notify.CategoryInfo
	if req.Category != "" {
		parsed, err := notify.ParseCategory(req.Category)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid category", err)
			return
		}
		cat = parsed
	}

	var opts []toast.Option
	switch {
	case req.Persistent, req.DurationMS < 0:
		opts = append(opts, toast.Persistent())
	case req.DurationMS > 0:
		opts = append(opts, toast.WithDuration(time.Duration(req.DurationMS)*time.Millisecond))
	}

	id := s.deps.Toasts.Add(cat, req.Title, req.Description, opts...)
	resp := gin.H{"id": id}
	if req.Log {
		resp["notification_id"] = s.deps.Notes.Add(cat, req.Title, req.Description).ID
	}
	ok(c, http.StatusCreated, resp)
}

func (s *Server) dismissToast(c *gin.Context) {
	s.deps.Toasts.Remove(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) clearToasts(c *gin.Context) {
	s.deps.Toasts.ClearAll()
	c.Status(http.StatusNoContent)
}

func (s *Server) emitEvent(c *gin.Context) {
	ev := s.deps.Generator.Emit()
	ok(c, http.StatusCreated, ev)
}

type generatorStatus struct {
	Running         bool       `json:"running"`
	Stats           live.Stats `json:"stats"`
	LotteryFraction float64    `json:"lottery_fraction"`
}

func (s *Server) generatorStats(c *gin.Context) {
	stats := s.deps.Generator.Stats()
	ok(c, http.StatusOK, generatorStatus{
		Running:         s.deps.Generator.Running(),
		Stats:           stats,
		LotteryFraction: stats.LotteryFraction(),
	})
}

func (s *Server) startGenerator(c *gin.Context) {
	s.deps.Generator.Start()
	ok(c, http.StatusOK, gin.H{"running": true})
}

func (s *Server) stopGenerator(c *gin.Context) {
	s.deps.Generator.Stop()
	ok(c, http.StatusOK, gin.H{"running": false})
}

type ruleView struct {
	alerts.Rule
	Enabled    bool   `json:"enabled"`
	Expression string `json:"expression"`
}

func (s *Server) listRules(c *gin.Context) {
	out := make([]ruleView, len(s.deps.Rules))
	for i, r := range s.deps.Rules {
		out[i] = ruleView{Rule: r, Enabled: r.IsEnabled(), Expression: r.Expression()}
	}
	ok(c, http.StatusOK, gin.H{"rules": out})
}

func (s *Server) health(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{
		"status":        "ok",
		"generator":     s.deps.Generator.Running(),
		"notifications": s.deps.Notes.Len(),
		"toasts":        s.deps.Toasts.Len(),
		"feed_clients":  s.feedClients(),
	})
}

func (s *Server) feedClients() int {
	if s.deps.Feed == nil {
		return 0
	}
	return s.deps.Feed.Clients()
}
