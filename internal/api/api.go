package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"spinach-backend/internal/core"
	"spinach-backend/internal/metrics"
	"spinach-backend/pkg/api"

	"github.com/go-chi/chi/v5"
)

const (
	uploadField  = "file"
	maxJSONBytes = 1 << 20
)

// PredictionService serves the two classifiers. The models are shared by all
// requests and never modified.
type PredictionService struct {
	models         *core.Models
	maxUploadBytes int64
}

func NewPredictionService(models *core.Models, maxUploadBytes int64) *PredictionService {
	return &PredictionService{models: models, maxUploadBytes: maxUploadBytes}
}

func (s *PredictionService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Post("/predict_cnn", RestHandler(instrument(metrics.ModelCNN, s.PredictCnn)))
	r.Post("/predict_ml", RestHandler(instrument(metrics.ModelML, s.PredictMl)))
}

func (s *PredictionService) imageModel() core.Model {
	if s.models == nil {
		return nil
	}
	return s.models.Image
}

func (s *PredictionService) tabularModel() core.Model {
	if s.models == nil {
		return nil
	}
	return s.models.Tabular
}

func (s *PredictionService) PredictCnn(r *http.Request) (any, error) {
	model := s.imageModel()
	if model == nil {
		return nil, CodedErrorf(http.StatusServiceUnavailable, "CNN model is not loaded")
	}

	data, filename, err := readUpload(r, uploadField, s.maxUploadBytes)
	if err != nil {
		return nil, err
	}
	slog.Debug("received image upload", "filename", filename, "bytes", len(data))

	img, err := core.DecodeImage(data)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	input, err := core.PreprocessImage(img)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	scores, err := model.Predict(input)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	label, err := core.ImageLabel(scores)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	return api.PredictionResponse{Prediction: label}, nil
}

func (s *PredictionService) PredictMl(r *http.Request) (any, error) {
	model := s.tabularModel()
	if model == nil {
		return nil, CodedErrorf(http.StatusServiceUnavailable, "ML model is not loaded")
	}

	input, err := parseFeatureRequest(r)
	if err != nil {
		return nil, err
	}

	features, err := core.ParseFeatures(input)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	prediction, err := model.Predict(features.Values())
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	label, err := core.TabularLabel(prediction)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	return api.PredictionResponse{Prediction: label}, nil
}

// readUpload returns the first part named field that carries a filename.
// Parts without a filename parameter are plain form values and are skipped.
func readUpload(r *http.Request, field string, limit int64) ([]byte, string, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", CodedErrorf(http.StatusBadRequest, "No file part in the request")
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", CodedErrorf(http.StatusBadRequest, "malformed multipart body: %v", err)
		}

		if part.FormName() != field {
			continue
		}
		filename, ok := partFilename(part.Header.Get("Content-Disposition"))
		if !ok {
			continue
		}
		if filename == "" {
			return nil, "", CodedErrorf(http.StatusBadRequest, "No image selected for uploading")
		}

		data, err := io.ReadAll(io.LimitReader(part, limit+1))
		if err != nil {
			return nil, "", CodedErrorf(http.StatusBadRequest, "failed to read uploaded file: %v", err)
		}
		if int64(len(data)) > limit {
			return nil, "", CodedErrorf(http.StatusRequestEntityTooLarge, "uploaded file exceeds %d bytes", limit)
		}
		return data, filename, nil
	}

	return nil, "", CodedErrorf(http.StatusBadRequest, "No file part in the request")
}

func partFilename(disposition string) (string, bool) {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return "", false
	}
	filename, ok := params["filename"]
	return filename, ok
}

// parseFeatureRequest decodes the JSON body into an object whatever the
// Content-Type. An absent or falsy document (null, false, 0, "", []) counts
// as no input; {} is valid and means every feature takes its default.
func parseFeatureRequest(r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBytes))
	if err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "unable to read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, CodedErrorf(http.StatusBadRequest, "No input data provided")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		slog.Error("error parsing request body", "error", err)
		return nil, CodedErrorf(http.StatusBadRequest, "unable to parse request body")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, CodedErrorf(http.StatusBadRequest, "unable to parse request body")
	}

	if isFalsy(doc) {
		return nil, CodedErrorf(http.StatusBadRequest, "No input data provided")
	}

	input, ok := doc.(map[string]any)
	if !ok {
		return nil, CodedErrorf(http.StatusInternalServerError, "input data must be a JSON object")
	}
	return input, nil
}

func isFalsy(doc any) bool {
	switch v := doc.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case json.Number:
		f, err := strconv.ParseFloat(v.String(), 64)
		return err == nil && f == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// instrument records latency, outcome and label for a prediction endpoint.
func instrument(model string, handler func(r *http.Request) (any, error)) func(r *http.Request) (any, error) {
	return func(r *http.Request) (any, error) {
		start := time.Now()
		res, err := handler(r)
		metrics.PredictionDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.PredictionErrors.WithLabelValues(model, strconv.Itoa(ErrorCode(err))).Inc()
			return nil, err
		}
		if pred, ok := res.(api.PredictionResponse); ok {
			metrics.Predictions.WithLabelValues(model, pred.Prediction).Inc()
		}
		return res, nil
	}
}
