package cmd

import (
	"compress/gzip"
	"time"

	"github.com/foomo/inertiacms/pkg/handler"
	"github.com/foomo/inertiacms/pkg/repo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flags without an explicit env binding are read from INERTIACMS_<KEY>, i.e. INERTIACMS_HISTORY_DIR

func logLevelFlag(v *viper.Viper) string {
	return v.GetString("log.level")
}

func addLogLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-level", "info", "log level")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindEnv("log.level", "LOG_LEVEL")
}

func logFormatFlag(v *viper.Viper) string {
	return v.GetString("log.format")
}

func addLogFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-format", "json", "log format")
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindEnv("log.format", "LOG_FORMAT")
}

func addressFlag(v *viper.Viper) string {
	return v.GetString("address")
}

func addAddressFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("address", ":8080", "Address to bind to (host:port)")
	_ = v.BindPFlag("address", flags.Lookup("address"))
}

func basePathFlag(v *viper.Viper) string {
	return v.GetString("base_path")
}

func addBasePathFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("base-path", "/inertiacms", "Base path of the admin api, must not be /")
	_ = v.BindPFlag("base_path", flags.Lookup("base-path"))
}

func siteFlag(v *viper.Viper) string {
	return v.GetString("site")
}

func addSiteFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("site", handler.DefaultSite, "Site to resolve requests in")
	_ = v.BindPFlag("site", flags.Lookup("site"))
}

func upstreamFlag(v *viper.Viper) string {
	return v.GetString("upstream")
}

func addUpstreamFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("upstream", "", "Upstream url for requests that are not rendered, responds with 404 if empty")
	_ = v.BindPFlag("upstream", flags.Lookup("upstream"))
}

func inertiaVersionFlag(v *viper.Viper) string {
	return v.GetString("inertia.version")
}

func addInertiaVersionFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("inertia-version", "", "Asset version, clients with another version reload the page")
	_ = v.BindPFlag("inertia.version", flags.Lookup("inertia-version"))
}

func rootTemplateFlag(v *viper.Viper) string {
	return v.GetString("inertia.root_template")
}

func addRootTemplateFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("root-template", "", "Path to the html root template, uses a minimal default if empty")
	_ = v.BindPFlag("inertia.root_template", flags.Lookup("root-template"))
}

func sharedPropsFlag(v *viper.Viper) string {
	return v.GetString("inertia.shared_props")
}

func addSharedPropsFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("shared-props", "", `JSON object of props every page gets, i.e. {"appName":"shop"}`)
	_ = v.BindPFlag("inertia.shared_props", flags.Lookup("shared-props"))
}

func pollFlag(v *viper.Viper) bool {
	return v.GetBool("poll.enabled")
}

func addPollFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("poll", false, "If true, the address arg will be used to periodically poll the content url")
	_ = v.BindPFlag("poll.enabled", flags.Lookup("poll"))
}

func pollIntervalFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("poll.interval")
}

func addPollIntervalFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("poll-interval", time.Minute, "Specifies the poll interval")
	_ = v.BindPFlag("poll.interval", flags.Lookup("poll-interval"))
}

func historyDirFlag(v *viper.Viper) string {
	return v.GetString("history.dir")
}

func addHistoryDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("history-dir", "/var/lib/inertiacms", "Where to put my data")
	_ = v.BindPFlag("history.dir", flags.Lookup("history-dir"))
}

func historyLimitFlag(v *viper.Viper) int {
	return v.GetInt("history.limit")
}

func addHistoryLimitFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("history-limit", 2, "Number of history records to keep")
	_ = v.BindPFlag("history.limit", flags.Lookup("history-limit"))
}

func storageTypeFlag(v *viper.Viper) string {
	return v.GetString("storage.type")
}

func addStorageTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-type", repo.StorageTypeFilesystem, "History storage (filesystem, blob)")
	_ = v.BindPFlag("storage.type", flags.Lookup("storage-type"))
}

func storageBlobBucketFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.bucket")
}

func addStorageBlobBucketFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-bucket", "", "Blob bucket url (gs://, s3://, azblob://)")
	_ = v.BindPFlag("storage.blob.bucket", flags.Lookup("storage-blob-bucket"))
}

func storageBlobPrefixFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.prefix")
}

func addStorageBlobPrefixFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-prefix", "", "Key prefix within the blob bucket")
	_ = v.BindPFlag("storage.blob.prefix", flags.Lookup("storage-blob-prefix"))
}

func repositoryTimeoutFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("repository.timeout")
}

func addRepositoryTimeoutFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("repository-timeout", 2*time.Minute, "Timeout for loading the repository")
	_ = v.BindPFlag("repository.timeout", flags.Lookup("repository-timeout"))
}

func gzipLevelFlag(v *viper.Viper) int {
	return v.GetInt("gzip.level")
}

func addGzipLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("gzip-level", gzip.DefaultCompression, "Compression level of responses")
	_ = v.BindPFlag("gzip.level", flags.Lookup("gzip-level"))
}

func gracefulPeriodFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("graceful_period")
}

func addGracefulPeriodFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("graceful-period", 0, "Period to wait for before shutting down")
	_ = v.BindPFlag("graceful_period", flags.Lookup("graceful-period"))
}

func serviceHealthzEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.healthz.enabled")
}

func addServiceHealthzEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-healthz-enabled", false, "Enable healthz service")
	_ = v.BindPFlag("service.healthz.enabled", flags.Lookup("service-healthz-enabled"))
}

func servicePrometheusEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.prometheus.enabled")
}

func addServicePrometheusEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-prometheus-enabled", false, "Enable prometheus service")
	_ = v.BindPFlag("service.prometheus.enabled", flags.Lookup("service-prometheus-enabled"))
}

func servicePProfEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.pprof.enabled")
}

func addServicePProfEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-pprof-enabled", false, "Enable pprof service")
	_ = v.BindPFlag("service.pprof.enabled", flags.Lookup("service-pprof-enabled"))
}

func otelEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("otel.enabled")
}

func addOtelEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("otel-enabled", false, "Enable otel service")
	_ = v.BindPFlag("otel.enabled", flags.Lookup("otel-enabled"))
	_ = v.BindEnv("otel.enabled", "OTEL_ENABLED")
}
