package service

import (
	"context"
	"errors"
	"strings"

	"github.com/deaffx/mottu-yard-devops/internal/domain"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"go.uber.org/zap"
)

var ErrPlateNotRecognized = errors.New("no plate recognized in image")

// TextDetector is the slice of the Rekognition API the service needs.
type TextDetector interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// LPRService extracts a vehicle plate from a gate camera image using
// Rekognition text detection.
type LPRService struct {
	detector TextDetector
	log      *zap.SugaredLogger
}

func NewLPRService(detector TextDetector, log *zap.SugaredLogger) *LPRService {
	return &LPRService{detector: detector, log: log}
}

// RecognizePlate returns the highest-confidence detected text that matches
// the plate format, with its confidence.
func (s *LPRService) RecognizePlate(ctx context.Context, imageBytes []byte) (string, float32, error) {
	if s.detector == nil {
		return "", 0, errors.New("rekognition client not configured")
	}

	input := &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: imageBytes},
	}
	result, err := s.detector.DetectText(ctx, input)
	if err != nil {
		return "", 0, err
	}

	var bestPlate string
	var bestConfidence float32
	for _, detection := range result.TextDetections {
		if detection.Type != types.TextTypesLine && detection.Type != types.TextTypesWord {
			continue
		}
		if detection.DetectedText == nil || detection.Confidence == nil {
			continue
		}
		// gate cameras often return "ABC 1234" or "ABC-1234"
		candidate := strings.ToUpper(*detection.DetectedText)
		candidate = strings.NewReplacer(" ", "", "-", "", ".", "").Replace(candidate)
		if !domain.ValidPlate(candidate) {
			continue
		}
		if *detection.Confidence > bestConfidence {
			bestConfidence = *detection.Confidence
			bestPlate = candidate
		}
	}

	if bestPlate == "" {
		s.log.Debugw("no plate candidate matched", "detections", len(result.TextDetections))
		return "", 0, ErrPlateNotRecognized
	}
	s.log.Infow("plate recognized", "plate", bestPlate, "confidence", bestConfidence)
	return bestPlate, bestConfidence, nil
}
