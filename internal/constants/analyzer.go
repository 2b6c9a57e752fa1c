package constants

import "time"

const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultModelURL    = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultTemperature = 0.1
	DefaultTopP        = 0.8
	DefaultTimeout     = 60 * time.Second

	// ImageMIMEType is the MIME type the model is told every image has.
	ImageMIMEType = "image/jpeg"
)
