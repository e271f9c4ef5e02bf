package config

import "github.com/spf13/viper"

// setDefaults registers every default so environment overrides bind even
// without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "docpage")
	v.SetDefault("run_mode", "release")

	v.SetDefault("logger.level", 4)
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.output_file", "")

	v.SetDefault("paging.name", "")
	v.SetDefault("paging.page_size", 20)
	v.SetDefault("paging.listen_for_updates", false)
	v.SetDefault("paging.stream_buffer", 1)

	v.SetDefault("source.kind", "memory")
	v.SetDefault("source.collection", "documents")
	v.SetDefault("source.order_by.field", "")
	v.SetDefault("source.order_by.descending", false)
	v.SetDefault("source.object_ids", false)

	v.SetDefault("data.mongodb.uri", "")
	v.SetDefault("data.mongodb.database", "")
	v.SetDefault("data.redis.addr", "")
	v.SetDefault("data.redis.prefix", "")
	v.SetDefault("data.firestore.project_id", "")
	v.SetDefault("data.firestore.emulator_host", "")

	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.max_requests", 100)
	v.SetDefault("breaker.interval", "5s")
	v.SetDefault("breaker.timeout", "3s")
	v.SetDefault("breaker.min_requests", 3)
	v.SetDefault("breaker.failure_ratio", 0.6)

	v.SetDefault("live.max_workers", 4)
	v.SetDefault("live.queue_size", 256)
	v.SetDefault("live.task_timeout", "30s")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)

	v.SetDefault("observes.tracer.url", "")
	v.SetDefault("observes.sentry.dsn", "")
}
