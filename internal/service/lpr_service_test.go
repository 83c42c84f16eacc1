package service

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDetector struct {
	detections []types.TextDetection
	err        error
}

func (d *fakeDetector) DetectText(_ context.Context, _ *rekognition.DetectTextInput, _ ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &rekognition.DetectTextOutput{TextDetections: d.detections}, nil
}

func detection(text string, confidence float32, kind types.TextTypes) types.TextDetection {
	return types.TextDetection{
		DetectedText: aws.String(text),
		Confidence:   aws.Float32(confidence),
		Type:         kind,
	}
}

func TestRecognizePlatePicksBestCandidate(t *testing.T) {
	svc := NewLPRService(&fakeDetector{detections: []types.TextDetection{
		detection("MOTTU", 99.0, types.TextTypesLine),
		detection("ABC1D23", 87.5, types.TextTypesLine),
		detection("XYZ9K99", 92.1, types.TextTypesWord),
	}}, zap.NewNop().Sugar())

	plate, confidence, err := svc.RecognizePlate(context.Background(), []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "XYZ9K99", plate)
	assert.InDelta(t, 92.1, float64(confidence), 0.01)
}

func TestRecognizePlateNormalizesSeparators(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"abc 1d23", "ABC1D23"},
		{"ABC-1234", "ABC1234"},
		{"A.B.C.1234", "ABC1234"},
	}
	for _, tc := range cases {
		svc := NewLPRService(&fakeDetector{detections: []types.TextDetection{
			detection(tc.raw, 90, types.TextTypesLine),
		}}, zap.NewNop().Sugar())

		plate, _, err := svc.RecognizePlate(context.Background(), []byte("jpeg"))
		require.NoError(t, err, "raw %q", tc.raw)
		assert.Equal(t, tc.want, plate)
	}
}

func TestRecognizePlateNoMatch(t *testing.T) {
	svc := NewLPRService(&fakeDetector{detections: []types.TextDetection{
		detection("ENTRADA", 99.9, types.TextTypesLine),
		detection("AB12", 95.0, types.TextTypesWord),
	}}, zap.NewNop().Sugar())

	_, _, err := svc.RecognizePlate(context.Background(), []byte("jpeg"))
	require.ErrorIs(t, err, ErrPlateNotRecognized)
}

func TestRecognizePlateNoDetector(t *testing.T) {
	svc := NewLPRService(nil, zap.NewNop().Sugar())

	_, _, err := svc.RecognizePlate(context.Background(), []byte("jpeg"))
	require.Error(t, err)
}
