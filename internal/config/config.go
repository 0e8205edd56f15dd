package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port             int
	ModelPath        string
	OnnxLibraryPath  string  // Path to the onnxruntime shared library, empty for system default
	ModelInputName   string  // Name of the model input tensor
	ModelOutputName  string  // Name of the model output tensor
	ModelInputSize   int     // Side length S of the square model input
	ConfThreshold    float32 // Minimum confidence for a detection to survive
	NMSIoUThreshold  float32 // IoU above which overlapping boxes are suppressed
	SamplingInterval int     // Milliseconds between sampled frames
	ROIPadding       int     // Pixels of padding around each decode crop
	DedupCooldown    int     // Milliseconds before an identical payload is accepted again
	RecentLimit      int     // Capacity of the recent-results list
	CameraID         int     // Webcam device ID
	CameraSource     string  // "webcam" or "feed"
	LogDirectory     string
}

func Load() *Config {
	return &Config{
		Port:             getEnvAsInt("PORT", 8080),
		ModelPath:        getEnv("MODEL_PATH", filepath.Join(".", "models", "barcode.onnx")),
		OnnxLibraryPath:  getEnv("ONNX_LIB_PATH", ""),
		ModelInputName:   getEnv("MODEL_INPUT_NAME", "images"),
		ModelOutputName:  getEnv("MODEL_OUTPUT_NAME", "output0"),
		ModelInputSize:   getEnvAsInt("MODEL_INPUT_SIZE", 640),
		ConfThreshold:    getEnvAsFloat("CONF_THRESHOLD", 0.25),
		NMSIoUThreshold:  getEnvAsFloat("NMS_IOU_THRESHOLD", 0.45),
		SamplingInterval: getEnvAsInt("SAMPLING_INTERVAL_MS", 150),
		ROIPadding:       getEnvAsInt("ROI_PADDING", 40),
		DedupCooldown:    getEnvAsInt("DEDUP_COOLDOWN_MS", 3000),
		RecentLimit:      getEnvAsInt("RECENT_LIMIT", 10),
		CameraID:         getEnvAsInt("CAMERA_ID", 0),
		CameraSource:     getEnv("CAMERA_SOURCE", "webcam"),
		LogDirectory:     getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatValue)
		}
	}
	return defaultValue
}
