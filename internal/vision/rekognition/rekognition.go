// Package rekognition classifies food photos with AWS Rekognition label
// detection.
package rekognition

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/vision"
)

const (
	backend = "rekognition"
	// maxImageBytes is the DetectLabels limit for raw image bytes.
	maxImageBytes = 5 * 1024 * 1024
)

// genericLabels are category labels Rekognition attaches to almost every
// meal photo. They say nothing about which food it is.
var genericLabels = map[string]bool{
	"Food":       true,
	"Meal":       true,
	"Dish":       true,
	"Lunch":      true,
	"Dinner":     true,
	"Breakfast":  true,
	"Brunch":     true,
	"Supper":     true,
	"Plate":      true,
	"Platter":    true,
	"Cuisine":    true,
	"Produce":    true,
	"Plant":      true,
	"Food Court": true,
	"Cutlery":    true,
	"Tableware":  true,
}

// LabelDetector is the part of *rekognition.Client the classifier uses.
type LabelDetector interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// NewClientHandle returns a handle that loads the AWS configuration and
// builds the Rekognition client on first use, once per process.
func NewClientHandle(region string) *vision.Handle[LabelDetector] {
	return vision.NewHandle(func(ctx context.Context) (LabelDetector, error) {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("unable to load AWS config: %w", err)
		}
		return rekognition.NewFromConfig(cfg), nil
	})
}

type RekognitionClassifier struct {
	region        string
	client        *vision.Handle[LabelDetector]
	maxLabels     int32
	minConfidence float32
}

func NewRekognitionClassifier(region string, client *vision.Handle[LabelDetector]) *RekognitionClassifier {
	return &RekognitionClassifier{
		region:        region,
		client:        client,
		maxLabels:     10,
		minConfidence: 50,
	}
}

func (c *RekognitionClassifier) Classify(ctx context.Context, image []byte, mimeType, _ string) ([]domain.Prediction, error) {
	if err := config.RequireCredential("AWS_REGION", c.region); err != nil {
		return nil, err
	}
	mime, err := vision.CheckMedia(image, mimeType, maxImageBytes)
	if err != nil {
		return nil, err
	}
	// DetectLabels reads JPEG and PNG only.
	if mime != "image/jpeg" && mime != "image/png" {
		return nil, &vision.UnsupportedMediaError{MimeType: mime, Size: len(image), Reason: "rekognition accepts JPEG and PNG only"}
	}

	detector, err := c.client.Get(ctx)
	if err != nil {
		return nil, &vision.ClassificationError{Backend: backend, Err: err}
	}

	out, err := detector.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(c.maxLabels),
		MinConfidence: aws.Float32(c.minConfidence),
	})
	if err != nil {
		var badFormat *types.InvalidImageFormatException
		var tooLarge *types.ImageTooLargeException
		if errors.As(err, &badFormat) || errors.As(err, &tooLarge) {
			return nil, &vision.UnsupportedMediaError{MimeType: mime, Size: len(image), Reason: err.Error()}
		}
		return nil, &vision.ClassificationError{Backend: backend, Err: fmt.Errorf("detect labels: %w", err)}
	}

	return toPredictions(out.Labels), nil
}

// toPredictions keeps specific labels ahead of generic ones; generic labels
// are only returned when nothing more specific was detected.
func toPredictions(labels []types.Label) []domain.Prediction {
	var specific, generic []domain.Prediction
	for _, l := range labels {
		name := aws.ToString(l.Name)
		if name == "" {
			continue
		}
		p := domain.Prediction{Label: name, Confidence: float64(aws.ToFloat32(l.Confidence)) / 100}
		if genericLabels[name] {
			generic = append(generic, p)
		} else {
			specific = append(specific, p)
		}
	}
	preds := specific
	if len(preds) == 0 {
		preds = generic
	}
	vision.SortPredictions(preds)
	return preds
}
