// Package broadcaster implements a background job that periodically
// scans the outbox for undelivered list change events and publishes
// them to Kafka.
package broadcaster
