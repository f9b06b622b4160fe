package core

import (
	"testing"
	"time"
)

func benchmarkPublish(b *testing.B, observers int) {
	hub := NewHub(nil, Options{MaxConcurrent: 32, DeliveryTimeout: time.Second})

	target := NewClient("target")
	target.Join(1)
	hub.Attach(target)

	for range observers - 1 {
		c := NewClient("client")
		c.Join(1)
		hub.Attach(c)
		// Drain to avoid buffer backpressure.
		go func(cl *Client) {
			for range cl.Messages {
			}
		}(c)
	}

	msg := testMessage(1, "payload")

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		hub.Publish(msg)
		<-target.Messages
	}
}

func BenchmarkPublish_10(b *testing.B)  { benchmarkPublish(b, 10) }
func BenchmarkPublish_100(b *testing.B) { benchmarkPublish(b, 100) }
func BenchmarkPublish_500(b *testing.B) { benchmarkPublish(b, 500) }
