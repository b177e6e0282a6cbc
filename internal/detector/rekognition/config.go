package rekognition

// Config holds configuration for the AWS Rekognition detector provider
type Config struct {
	// Region is the AWS region where Rekognition will be called
	Region string

	// MinConfidence is the detection-confidence floor in [0,1];
	// Rekognition itself works in percent and the conversion happens in
	// the provider.
	MinConfidence float64
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:        "us-east-1",
		MinConfidence: 0.25,
	}
}
