package main

import (
	awslambda "github.com/aws/aws-lambda-go/lambda"

	"function-gateway/function"
	"function-gateway/internal/config"
	"function-gateway/pkg/lambda"
	"function-gateway/pkg/server"
)

func main() {
	proxy := lambda.NewProxy(config.GetOptimizedConfig, server.Function{
		Handle:   function.Handle,
		Register: function.Register,
		Routes:   function.Routes(),
		Schemas:  function.Schemas(),
	})
	defer proxy.Close()

	awslambda.Start(proxy.Handle)
}
