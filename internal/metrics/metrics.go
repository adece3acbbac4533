package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ModelCNN = "cnn"
	ModelML  = "ml"
)

var (
	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spinach_predictions_total",
			Help: "Successful predictions by model and label",
		},
		[]string{"model", "label"},
	)

	PredictionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spinach_prediction_errors_total",
			Help: "Failed prediction requests by model and HTTP status",
		},
		[]string{"model", "code"},
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spinach_prediction_duration_seconds",
			Help:    "Time spent preprocessing and running a model",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
)
