package model

import "errors"

var (
	// ErrLoad is returned when the model file is missing, unreadable or incompatible.
	ErrLoad = errors.New("model load failed")

	// ErrDecode is returned when the upload is not a decodable image.
	ErrDecode = errors.New("image decode failed")

	// ErrTooManyPixels is returned when the declared image dimensions exceed MaxPixels.
	ErrTooManyPixels = errors.New("image exceeds pixel limit")

	// ErrShapeMismatch is returned when tensor or model dimensions disagree with the label set.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInference is returned when the forward pass fails.
	ErrInference = errors.New("inference failed")

	// ErrNotLoaded is returned when no classifier is available.
	ErrNotLoaded = errors.New("model not loaded")
)
