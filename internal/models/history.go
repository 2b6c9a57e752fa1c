package models

import "time"

type HistoryItem struct {
	ID       string         `json:"id"`
	Date     time.Time      `json:"date"`
	ImageRef string         `json:"imageUri"`
	Result   AnalysisResult `json:"result"`
}
