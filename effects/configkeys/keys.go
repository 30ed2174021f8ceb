package configkeys

// Environment keys read by the config package.
const (
	delimiter = "_"

	ConfigPrefix = "EFFECT" + delimiter + "ENGINE"

	ConfigLogLevel = ConfigPrefix + delimiter + "LOG_LEVEL"

	ConfigDatabasePrefix     = ConfigPrefix + delimiter + "DB"
	ConfigDatabaseBackend    = ConfigDatabasePrefix + delimiter + "BACKEND"
	ConfigDatabaseSQLitePath = ConfigDatabasePrefix + delimiter + "SQLITE_PATH"

	ConfigCachePrefix      = ConfigPrefix + delimiter + "CACHE"
	ConfigCacheNumCounters = ConfigCachePrefix + delimiter + "NUM_COUNTERS"
	ConfigCacheMaxCost     = ConfigCachePrefix + delimiter + "MAX_COST"

	ConfigAuthPrefix = ConfigPrefix + delimiter + "AUTH"
	ConfigAuthSecret = ConfigAuthPrefix + delimiter + "SECRET"

	ConfigPoolPrefix     = ConfigPrefix + delimiter + "POOL"
	ConfigPoolBufferSize = ConfigPoolPrefix + delimiter + "BUFFER_SIZE"
	ConfigPoolNumWorkers = ConfigPoolPrefix + delimiter + "NUM_WORKERS"

	ConfigMessagingPrefix         = ConfigPrefix + delimiter + "MESSAGING"
	ConfigMessagingConsumeTimeout = ConfigMessagingPrefix + delimiter + "CONSUME_TIMEOUT"
)
