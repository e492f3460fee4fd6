package cmd

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"
	"strings"

	"github.com/foomo/inertiacms/pkg/handler"
	"github.com/foomo/inertiacms/pkg/render"
	"github.com/foomo/inertiacms/pkg/repo"
	"github.com/foomo/inertiacms/pkg/utils"
	"github.com/foomo/keel"
	"github.com/foomo/keel/healthz"
	keelhttp "github.com/foomo/keel/net/http"
	"github.com/foomo/keel/net/http/middleware"
	"github.com/foomo/keel/service"
	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func NewHTTPCommand() *cobra.Command {
	v := newViper()
	service.DefaultHTTPPProfAddr = ":6060"

	cmd := &cobra.Command{
		Use:   "http <url>",
		Short: "Start http server",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return err
			}
			if !utils.IsValidURL(args[0]) {
				return errors.Errorf("invalid repository url %q", args[0])
			}
			return validateBasePath(basePathFlag(v))
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			var comps []string
			if len(args) == 0 {
				comps = cobra.AppendActiveHelp(comps, "You must specify the URL of the content repository export")
			} else {
				comps = cobra.AppendActiveHelp(comps, "This command does not take any more arguments")
			}
			return comps, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svr := keel.NewServer(
				keel.WithHTTPPrometheusService(servicePrometheusEnabledFlag(v)),
				keel.WithHTTPHealthzService(serviceHealthzEnabledFlag(v)),
				keel.WithPrometheusMeter(servicePrometheusEnabledFlag(v)),
				keel.WithGracefulPeriod(gracefulPeriodFlag(v)),
				keel.WithOTLPGRPCTracer(otelEnabledFlag(v)),
				keel.WithHTTPPProfService(servicePProfEnabledFlag(v)),
			)

			l := svr.Logger()

			storage, err := repo.NewStorage(cmd.Context(), l,
				storageTypeFlag(v),
				historyDirFlag(v),
				storageBlobBucketFlag(v),
				storageBlobPrefixFlag(v),
			)
			if err != nil {
				return errors.Wrap(err, "failed to create storage")
			}

			history, err := repo.NewHistory(l.Named("inst"),
				repo.HistoryWithStorage(storage),
				repo.HistoryWithHistoryLimit(historyLimitFlag(v)),
			)
			if err != nil {
				return errors.Wrap(err, "failed to create history")
			}

			r := repo.New(l.Named("inst"),
				args[0],
				history,
				repo.WithHTTPClient(
					keelhttp.NewHTTPClient(
						keelhttp.HTTPClientWithTimeout(repositoryTimeoutFlag(v)),
						keelhttp.HTTPClientWithTelemetry(),
					),
				),
				repo.WithPollInterval(pollIntervalFlag(v)),
				repo.WithPoll(pollFlag(v)),
			)

			renderer, err := newRenderer(l, v)
			if err != nil {
				return err
			}

			next, err := newUpstream(l, upstreamFlag(v))
			if err != nil {
				return err
			}

			sharedProps, err := newSharedProps(sharedPropsFlag(v))
			if err != nil {
				return err
			}

			isLoadedHealtherFn := healthz.NewHealthzerFn(func(ctx context.Context) error {
				if !r.Loaded() {
					return repo.ErrNotLoaded
				}
				return nil
			})
			svr.AddStartupHealthzers(isLoadedHealtherFn)
			svr.AddReadinessHealthzers(isLoadedHealtherFn)

			svr.AddClosers(func(ctx context.Context) error {
				return history.Close()
			})

			router := chi.NewRouter()
			router.Handle(path.Join(basePathFlag(v), "*"), handler.NewHTTP(l.Named("inst"), r, handler.WithBasePath(basePathFlag(v))))
			router.With(handler.NewInertia(l.Named("inst"), r, renderer,
				handler.WithSite(siteFlag(v)),
				handler.WithSharedProps(sharedProps),
			)).Handle("/*", next)

			svr.AddServices(
				service.NewGoRoutine(l.Named("go.repo"), "repo", func(ctx context.Context, l *zap.Logger) error {
					return r.Start(ctx)
				}),
				service.NewHTTP(l.Named("svc.http"), "http", addressFlag(v),
					router,
					middleware.Telemetry(),
					middleware.Logger(),
					middleware.GZip(middleware.GZipWithLevel(gzipLevelFlag(v))),
					middleware.Recover(),
				),
			)

			svr.Run()
			return nil
		},
	}

	flags := cmd.Flags()
	addAddressFlag(flags, v)
	addBasePathFlag(flags, v)
	addSiteFlag(flags, v)
	addUpstreamFlag(flags, v)
	addInertiaVersionFlag(flags, v)
	addRootTemplateFlag(flags, v)
	addSharedPropsFlag(flags, v)
	addPollFlag(flags, v)
	addPollIntervalFlag(flags, v)
	addHistoryDirFlag(flags, v)
	addHistoryLimitFlag(flags, v)
	addGracefulPeriodFlag(flags, v)
	addOtelEnabledFlag(flags, v)
	addServiceHealthzEnabledFlag(flags, v)
	addServicePrometheusEnabledFlag(flags, v)
	addServicePProfEnabledFlag(flags, v)
	addStorageTypeFlag(flags, v)
	addStorageBlobBucketFlag(flags, v)
	addStorageBlobPrefixFlag(flags, v)
	addRepositoryTimeoutFlag(flags, v)
	addGzipLevelFlag(flags, v)

	return cmd
}

func newRenderer(l *zap.Logger, v *viper.Viper) (*render.Inertia, error) {
	opts := []render.Option{render.WithVersion(inertiaVersionFlag(v))}
	if filename := rootTemplateFlag(v); filename != "" {
		tpl, err := template.ParseFiles(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse root template %q", filename)
		}
		opts = append(opts, render.WithRootTemplate(tpl))
	}
	return render.New(l.Named("inst"), opts...), nil
}

// newUpstream returns the handler for requests that are not rendered
func newUpstream(l *zap.Logger, upstream string) (http.Handler, error) {
	if upstream == "" {
		return http.NotFoundHandler(), nil
	}
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid upstream %q", upstream)
	}
	l.Info("proxying unrendered requests", zap.String("upstream", u.String()))
	return httputil.NewSingleHostReverseProxy(u), nil
}

// validateBasePath rejects base paths the admin routes would shadow all pages with
func validateBasePath(basePath string) error {
	if !strings.HasPrefix(basePath, "/") || path.Clean(basePath) == "/" {
		return errors.Errorf("invalid base path %q, expected a path below /", basePath)
	}
	return nil
}

func newSharedProps(raw string) (map[string]interface{}, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var props map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, errors.Wrap(err, "invalid shared props")
	}
	return props, nil
}
