package analysis

import (
	"context"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
)

//go:generate mockgen -destination=mock/mock_analyzer.go -package=mockanalysis -source=analyzer.go

// Request is everything an analyzer may look at for one response
type Request struct {
	// Session is a read-only snapshot taken before the response is appended
	Session  *firstlogin.Session
	Prompt   firstlogin.PendingPrompt
	Response string
}

// Analyzer scores a player response. Every score in the result is in [0,1].
type Analyzer interface {
	Analyze(ctx context.Context, req *Request) (*firstlogin.AnalysisResult, error)

	// Name identifies the analyzer in logs
	Name() string
}

func sessionID(req *Request) string {
	if req == nil || req.Session == nil {
		return ""
	}
	return req.Session.ID
}

func inRange(r *firstlogin.AnalysisResult) bool {
	for _, v := range []float64{r.Persuasiveness, r.Confidence, r.Consistency, r.Detail} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
