package config

import (
	"os"
	"sync"
)

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	IsLambda     bool
	FunctionName string
}

// Global serverless configuration
var (
	serverlessConfig *ServerlessConfig
	serverlessOnce   sync.Once
)

// GetServerlessConfig returns the serverless configuration
func GetServerlessConfig() *ServerlessConfig {
	serverlessOnce.Do(func() {
		serverlessConfig = detectServerless()
	})
	return serverlessConfig
}

func detectServerless() *ServerlessConfig {
	return &ServerlessConfig{
		IsLambda:     isRunningInLambda(),
		FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
	}
}

// isRunningInLambda detects if the application is running in AWS Lambda
func isRunningInLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// IsServerlessMode returns true if running in serverless mode
func IsServerlessMode() bool {
	return GetServerlessConfig().IsLambda
}

// GetDeploymentMode returns the current deployment mode
func GetDeploymentMode() string {
	if IsServerlessMode() {
		return "serverless"
	}
	return "server"
}

// AdaptConfigForServerless adjusts config for a Lambda deployment. The
// function runs behind API Gateway, which owns timeouts and body limits, and
// a read-only filesystem makes embedded schemas the only reliable source.
func AdaptConfigForServerless(config *Config, serverless *ServerlessConfig) *Config {
	if serverless == nil || !serverless.IsLambda {
		return config
	}

	config.Schema.Source = "embedded"
	config.Limits.MaxBodyBytes = 0
	if serverless.FunctionName != "" {
		config.FunctionName = serverless.FunctionName
	}
	return config
}

// GetOptimizedConfig returns configuration optimized for the current deployment mode
func GetOptimizedConfig() (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}

	return AdaptConfigForServerless(config, GetServerlessConfig()), nil
}
