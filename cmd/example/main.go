package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/keeperio/promisekeeper/pkg/config"
	"github.com/keeperio/promisekeeper/pkg/keeper"
	obsprom "github.com/keeperio/promisekeeper/pkg/observability/prometheus"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON keeper config")
	metricsAddr := flag.String("metrics", ":2112", "address for the Prometheus /metrics endpoint")
	flag.Parse()

	shutdownTracing, err := setupTracing()
	if err != nil {
		log.Fatalf("tracing setup failed: %v", err)
	}
	defer shutdownTracing()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(obsprom.DefaultRegistry, promhttp.HandlerOpts{}))
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	cfg := keeper.DefaultConfig()
	cfg.Workers = 3
	if *configPath != "" {
		if err := config.LoadWithEnv(*configPath, "KEEPER", &cfg); err != nil {
			log.Fatalf("config load failed: %v", err)
		}
		if err := config.Validate(&cfg, config.MinInt("Workers", 1)); err != nil {
			log.Fatalf("config invalid: %v", err)
		}
	}

	pk, err := keeper.FromConfig(cfg)
	if err != nil {
		log.Fatalf("keeper setup failed: %v", err)
	}

	// A batch of slow squares; completion order is not submission order.
	promises := make([]*keeper.Promise, 0, 7)
	for i := 1; i <= 7; i++ {
		n := i
		p := pk.SubmitWithNotify(func(ctx context.Context) (interface{}, error) {
			time.Sleep(time.Duration(rand.Intn(100)) * time.Millisecond)
			return n * n, nil
		}, func(p *keeper.Promise) {
			fmt.Printf("notified: %d^2 = %v (took %s)\n", n, p.Result(), p.ExecutionTime())
		})
		promises = append(promises, p)
	}

	// A task that fails; the failure is captured, not propagated.
	failing := pk.Submit(func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("division by zero")
	})

	// Chained continuations.
	chained := pk.Submit(func(ctx context.Context) (interface{}, error) {
		return -5, nil
	}).ThenDo(func(p *keeper.Promise) (interface{}, error) {
		return p.Result().(int) * 5, nil
	}).ThenDo(func(p *keeper.Promise) (interface{}, error) {
		return p.Result().(int) - 5, nil
	})

	ctx := context.Background()
	for _, p := range promises {
		if _, err := p.Await(ctx); err != nil {
			log.Printf("task failed: %v", err)
		}
	}
	if _, err := failing.Await(ctx); err != nil {
		fmt.Printf("captured failure: %v\n", err)
	}
	if v, err := chained.Await(ctx); err == nil {
		fmt.Printf("chained result: %v\n", v)
	}

	// Auto-stop drains the pool once nothing is queued or in flight.
	for pk.IsRunning() {
		time.Sleep(10 * time.Millisecond)
	}
	stats := pk.Stats()
	fmt.Printf("done: completed=%d failed=%d running=%v\n", stats.Completed, stats.Failed, stats.Running)
}

func setupTracing() (func(), error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("tracer shutdown failed: %v", err)
		}
	}, nil
}
