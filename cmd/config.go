package cmd

// Config carries the process configuration, loaded from the environment by
// the entrypoint.
type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaBrokers       []string
	KafkaConsumerGroup string

	// AssignBaseRadiusKm is the first courier search ring; the search
	// doubles it until AssignMaxRadiusKm.
	AssignBaseRadiusKm float64
	AssignMaxRadiusKm  float64

	// OutboxBatchSize bounds one relay tick; OutboxMaxAttempts is the
	// publish attempt budget before a message dead-letters.
	OutboxBatchSize   int
	OutboxMaxAttempts int
}
