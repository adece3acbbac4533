package api

type PredictionResponse struct {
	Prediction string `json:"prediction"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
