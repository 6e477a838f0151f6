package augment

import "errors"

// Sentinel errors for augmentation.
var (
	// ErrInvalidRatio indicates a perturbation ratio outside (0, 1].
	ErrInvalidRatio = errors.New("ratio must be in (0, 1]")

	// ErrNilModel indicates New was called without a model.
	ErrNilModel = errors.New("model is required")

	// ErrInvalidMaskToken indicates the model's mask token is empty or contains whitespace.
	ErrInvalidMaskToken = errors.New("invalid mask token")

	// ErrNoPrediction indicates the scorer returned no usable completion.
	ErrNoPrediction = errors.New("scorer returned no prediction")

	// ErrInvalidMode indicates an unknown augmentation mode.
	ErrInvalidMode = errors.New("invalid augmentation mode")
)
