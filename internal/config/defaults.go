package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "deliveries_db",
}

var defaultPayments = Payments{
	BaseURL:        "https://api.payments.local",
	CaptureTimeout: 5 * time.Second,
}

var defaultAgreementsGateway = AgreementsGateway{
	BaseURL:     "http://localhost:8090",
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    200 * time.Millisecond,
}

var defaultKafka = Kafka{
	PaymentsTopic: "payment-events",
	NotifyTopic:   "delivery-notifications",
	GroupID:       "service-delivery",
}

var defaultDelivery = Delivery{
	FeeAmount:         5000,
	Ordering:          "payment-first",
	VerifyMaxAttempts: 5,
	VerifyWindow:      time.Minute,
}

var defaultRateLimit = RateLimit{
	Limit:  20,
	Window: time.Second,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultPayments returns the default payment processor settings.
func DefaultPayments() Payments {
	return defaultPayments
}

// DefaultAgreementsGateway returns the default agreements gateway settings.
func DefaultAgreementsGateway() AgreementsGateway {
	return defaultAgreementsGateway
}

// DefaultKafka returns the default Kafka settings. Brokers are empty by
// default: the async paths stay disabled until configured.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultDelivery returns the default delivery policy settings.
// FeeAmount is a flat fee in minor currency units.
func DefaultDelivery() Delivery {
	return defaultDelivery
}

// DefaultRateLimit returns the default HTTP rate limiter settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}
