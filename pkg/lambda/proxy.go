// Package lambda serves the gateway router from AWS Lambda behind API Gateway
package lambda

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/sirupsen/logrus"

	"function-gateway/internal/apierror"
	"function-gateway/internal/config"
	"function-gateway/pkg/server"
)

// flushTimeout bounds the per-invocation telemetry flush
const flushTimeout = time.Second

// ConfigLoader loads the gateway configuration on cold start
type ConfigLoader func() (*config.Config, error)

// Proxy lazily builds the container on the first invocation and reuses it
// for every warm invocation of the same execution environment.
type Proxy struct {
	load ConfigLoader
	fn   server.Function
	opts []server.Option

	initOnce  sync.Once
	initErr   error
	container *server.Container
	adapter   *ginadapter.GinLambda
}

// NewProxy creates a proxy for fn
func NewProxy(load ConfigLoader, fn server.Function, opts ...server.Option) *Proxy {
	return &Proxy{
		load: load,
		fn:   fn,
		opts: opts,
	}
}

func (p *Proxy) initialize(ctx context.Context) error {
	p.initOnce.Do(func() {
		cfg, err := p.load()
		if err != nil {
			p.initErr = err
			return
		}
		config.SetupLogging(cfg)

		container, err := server.NewContainer(ctx, cfg, p.fn, p.opts...)
		if err != nil {
			p.initErr = err
			return
		}

		p.container = container
		p.adapter = ginadapter.New(container.Router)
	})
	return p.initErr
}

// Handle serves one API Gateway proxy event
func (p *Proxy) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if err := p.initialize(ctx); err != nil {
		logrus.WithError(err).Error("Failed to initialize function gateway")
		return internalError(), nil
	}

	// Events are flushed per invocation; the environment may be frozen
	// right after the response is returned.
	defer p.container.Reporter.Flush(flushTimeout)

	resp, err := p.adapter.ProxyWithContext(ctx, req)
	if err != nil {
		logrus.WithError(err).Error("Failed to proxy request")
		p.container.Reporter.Report(ctx, err)
		return internalError(), nil
	}
	return resp, nil
}

// Close releases the container, if one was built
func (p *Proxy) Close() error {
	if p.container == nil {
		return nil
	}
	return p.container.Close()
}

// internalError is the 500 envelope for failures outside the gin engine
func internalError() events.APIGatewayProxyResponse {
	env := apierror.FromStatus(http.StatusInternalServerError).ToEnvelope()
	body, _ := json.Marshal(env)
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusInternalServerError,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
