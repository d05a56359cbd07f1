package handlers

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/gitscout/backend/internal/insight"
	"github.com/gitscout/backend/internal/llm"
	"github.com/gitscout/backend/internal/metrics"
	"github.com/gitscout/backend/pkg/logger"
)

// SummarizeHandler streams AI insights over a websocket. Each inbound message
// is one summarize request; chunks are relayed as {type, content} JSON.
type SummarizeHandler struct {
	insights *insight.Service
}

func NewSummarizeHandler(insights *insight.Service) *SummarizeHandler {
	return &SummarizeHandler{insights: insights}
}

func (h *SummarizeHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var req insight.SummarizeRequest
		if err := c.ReadJSON(&req); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if req.Repo.Author == "" || req.Repo.Name == "" {
			c.WriteJSON(llm.ErrorChunk("repo author and name are required"))
			continue
		}

		h.streamInsight(c, req)
	}
}

// streamInsight runs one summarize pipeline and relays its chunks. A failed
// websocket write cancels the context, which unblocks the producer goroutine.
func (h *SummarizeHandler) streamInsight(c *websocket.Conn, req insight.SummarizeRequest) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mode := "quick"
	if req.DeepContext {
		mode = "deep"
	}
	start := time.Now()

	events := make(chan llm.StreamChunk, 100)
	errs := make(chan error, 1)
	go func() {
		errs <- h.insights.Summarize(ctx, req, events)
	}()

	for chunk := range events {
		if err := c.WriteJSON(chunk); err != nil {
			logger.Warn("WebSocket write failed, abandoning stream",
				zap.String("repo", req.Repo.Author+"/"+req.Repo.Name),
				zap.Error(err),
			)
			cancel()
			// Drain so the producer's close is observed.
			for range events {
			}
			break
		}
	}

	if err := <-errs; err != nil {
		logger.Warn("Insight generation failed",
			zap.String("repo", req.Repo.Author+"/"+req.Repo.Name),
			zap.Error(err),
		)
		return
	}

	metrics.InsightDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}
