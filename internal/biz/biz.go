package biz

import (
	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Transcript *usecase.TranscriptUsecase
	Analysis   *usecase.AnalysisUsecase
	Job        *usecase.JobRunner
}
