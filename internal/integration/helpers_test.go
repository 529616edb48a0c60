//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("aha-test"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// syntheticMonthly returns six calendar years of monthly SLP over the North
// Atlantic. The high expands over the north-east corner in the winter of 2003.
func syntheticMonthly() domain.MonthlyField {
	lat := []float64{0, 10, 20, 30, 40, 50, 60}
	lon := []float64{-70, -60, -50, -40, -30, -20, -10, 0, 10, 20}
	var months []domain.YearMonth
	for y := 2000; y < 2006; y++ {
		for m := time.January; m <= time.December; m++ {
			months = append(months, domain.YearMonth{Year: y, Month: m})
		}
	}

	cells := len(lat) * len(lon)
	values := make([]float64, len(months)*cells)
	for t, ym := range months {
		for i, la := range lat {
			for j, lo := range lon {
				v := 101325 + 400*math.Cos(3*la*domain.RadPerDeg) + float64((i*7+j*3+t)%5)*20
				strong := ym.Year == 2003 && ym.Month <= time.February || ym.Year == 2002 && ym.Month == time.December
				if strong && la >= 30 && lo >= -30 {
					v += 900
				}
				values[t*cells+i*len(lon)+j] = v
			}
		}
	}
	return domain.MonthlyField{Grid: domain.Grid{Lat: lat, Lon: lon}, Months: months, Values: values}
}
