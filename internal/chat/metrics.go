package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_sessions",
		Help: "Number of currently registered sessions",
	})

	LiveRooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_live_rooms",
		Help: "Number of chat rooms created since start",
	})

	EnvelopesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_envelopes_total",
		Help: "Total envelopes processed by type",
	}, []string{"type"})

	DroppedMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_dropped_messages_total",
		Help: "Chat messages dropped because the sender was not in a room",
	})

	BroadcastDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_broadcast_seconds",
		Help:    "Time to fan one message out to a room",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(ConnectedSessions)
	prometheus.MustRegister(LiveRooms)
	prometheus.MustRegister(EnvelopesTotal)
	prometheus.MustRegister(DroppedMessages)
	prometheus.MustRegister(BroadcastDuration)
}
