package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/adapters/http/api"
	app "github.com/shuji-bonji/xcomet-mcp-server/internal/app"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/config"
	"github.com/shuji-bonji/xcomet-mcp-server/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			// Test with environment variables
			_ = os.Setenv("XCOMET_MODEL", "Unbabel/XCOMET-XXL")
			_ = os.Setenv("XCOMET_PORT", "8080")
			_ = os.Setenv("XCOMET_BATCH_SIZE", "4")
			defer func() {
				_ = os.Unsetenv("XCOMET_MODEL")
				_ = os.Unsetenv("XCOMET_PORT")
				_ = os.Unsetenv("XCOMET_BATCH_SIZE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Model, convey.ShouldEqual, "Unbabel/XCOMET-XXL")
				convey.So(cfg.Port, convey.ShouldEqual, 8080)
				convey.So(cfg.BatchSize, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithModelName("Unbabel/XCOMET-XXL"),
					app.WithDefaultBatchSize(4),
					app.WithCacheSize(64),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, func() {})
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestEngineFactorySelection(t *testing.T) {
	convey.Convey("Given the engine factory selector", t, func() {
		convey.Convey("When the simulated engine is configured", func() {
			cfg := config.New()
			cfg.Engine = config.EngineSimulated

			convey.Convey("Then no factory is returned and the service default applies", func() {
				convey.So(engineFactory(cfg), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the onnx engine is configured", func() {
			cfg := config.New()
			cfg.Engine = config.EngineONNX

			convey.Convey("Then a factory is returned", func() {
				convey.So(engineFactory(cfg), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		convey.Convey("When testing full application setup", func() {
			_ = os.Setenv("XCOMET_PORT", "0")
			_ = os.Setenv("XCOMET_CACHE_SIZE", "16")
			defer func() {
				_ = os.Unsetenv("XCOMET_PORT")
				_ = os.Unsetenv("XCOMET_CACHE_SIZE")
			}()

			convey.Convey("Then all components should work together", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				// Load configuration
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)

				// Create service (without starting to avoid logger dependency)
				svc := app.New(
					app.WithModelName(cfg.Model),
					app.WithDefaultBatchSize(cfg.BatchSize),
					app.WithCacheSize(cfg.CacheSize),
				)
				convey.So(svc, convey.ShouldNotBeNil)

				// Create HTTP server
				server := api.NewServer(svc, cancel)
				convey.So(server, convey.ShouldNotBeNil)

				// Create HTTP mux and register routes
				mux := http.NewServeMux()
				convey.So(mux, convey.ShouldNotBeNil)
				server.Register(ctx, mux)

				// Stop service
				svc.Stop()
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("XCOMET_MODEL", "")
			defer func() { _ = os.Unsetenv("XCOMET_MODEL") }()

			convey.Convey("Then configuration loading should fail", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing service creation with invalid options", func() {
			convey.Convey("Then service should handle invalid options gracefully", func() {
				// Test with extreme values
				svc := app.New(
					app.WithDefaultBatchSize(0),
					app.WithCacheSize(-1),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestPortAnnouncement(t *testing.T) {
	convey.Convey("Given the port announcement", t, func() {
		convey.Convey("When announcing a port", func() {
			convey.So(func() { announcePort(8080) }, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationConcurrency(t *testing.T) {
	convey.Convey("Given main application concurrency", t, func() {
		convey.Convey("When testing concurrent component creation", func() {
			numGoroutines := 10
			done := make(chan bool, numGoroutines)

			// Start multiple goroutines creating components
			for i := 0; i < numGoroutines; i++ {
				go func(id int) {
					defer func() {
						if r := recover(); r != nil {
							t.Logf("Goroutine %d panicked: %v", id, r)
						}
						done <- true
					}()

					svc := app.New()
					if svc == nil {
						t.Errorf("Goroutine %d: service creation failed", id)
						return
					}

					server := api.NewServer(svc, func() {})
					if server == nil {
						t.Errorf("Goroutine %d: HTTP server creation failed", id)
						return
					}

					registry := prometheus.NewRegistry()
					manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
					if manager == nil {
						t.Errorf("Goroutine %d: metrics manager creation failed", id)
						return
					}
				}(i)
			}

			// Wait for all goroutines to complete
			for i := 0; i < numGoroutines; i++ {
				<-done
			}

			convey.Convey("Then all components should be created successfully", func() {
				convey.So(true, convey.ShouldBeTrue)
			})
		})
	})
}
