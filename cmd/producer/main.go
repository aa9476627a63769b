package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/segmentio/kafka-go"

	"github.com/sanspareilsmyn/annualtables/internal/message"
)

type options struct {
	brokers      string
	topic        string
	file         string
	mqttBroker   string
	days         int
	stepsPerHour int
	interval     time.Duration
	seed         int64
}

var daysInMonth = [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func main() {
	var opts options
	flag.StringVar(&opts.brokers, "brokers", "localhost:9092", "Comma separated Kafka brokers")
	flag.StringVar(&opts.topic, "topic", "timesteps", "Kafka or MQTT topic to produce to")
	flag.StringVar(&opts.mqttBroker, "mqtt", "", "Publish frames to this MQTT broker (e.g. tcp://localhost:1883) on -topic instead of Kafka")
	flag.StringVar(&opts.file, "file", "", "Write frames as JSON Lines to this file instead of Kafka (\"-\" for stdout)")
	flag.IntVar(&opts.days, "days", 7, "Number of simulated days")
	flag.IntVar(&opts.stepsPerHour, "steps", 4, "Zone timesteps per hour")
	flag.DurationVar(&opts.interval, "interval", 0, "Delay between frames when producing to a broker")
	flag.Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	if opts.stepsPerHour < 1 || 60%opts.stepsPerHour != 0 {
		log.Fatalf("-steps must divide 60, got %d", opts.stepsPerHour)
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		log.Println("Shutdown signal received, stopping producer...")
		cancel()
	}()

	var err error
	switch {
	case opts.file != "":
		err = produceFile(ctx, opts)
	case opts.mqttBroker != "":
		err = produceMQTT(ctx, opts)
	default:
		err = produceKafka(ctx, opts)
	}
	if err != nil && ctx.Err() == nil {
		log.Fatalf("Producer failed: %v", err)
	}
}

func produceKafka(ctx context.Context, opts options) error {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(opts.brokers, ",")...),
		Topic:    opts.topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Printf("Error closing kafka writer: %v", err)
		}
	}()
	log.Printf("Starting timestep producer for topic: %s on brokers: %s", opts.topic, opts.brokers)

	count := 0
	err := generate(ctx, opts, func(data []byte) error {
		if err := writer.WriteMessages(ctx, kafka.Message{Value: data}); err != nil {
			return err
		}
		count++
		if opts.interval > 0 {
			select {
			case <-time.After(opts.interval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	log.Printf("Produced %d frames", count)
	return err
}

func produceMQTT(ctx context.Context, opts options) error {
	client := mqtt.NewClient(mqtt.NewClientOptions().
		AddBroker(opts.mqttBroker).
		SetClientID("annualtables-producer"))
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("Starting timestep producer for topic: %s on MQTT broker: %s", opts.topic, opts.mqttBroker)

	return generate(ctx, opts, func(data []byte) error {
		// QoS 1 so the subscriber sees every step.
		token := client.Publish(opts.topic, 1, false, data)
		token.Wait()
		if err := token.Error(); err != nil {
			return err
		}
		if opts.interval > 0 {
			select {
			case <-time.After(opts.interval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
}

func produceFile(ctx context.Context, opts options) error {
	var out io.Writer = os.Stdout
	if opts.file != "-" {
		f, err := os.Create(opts.file)
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Printf("Error closing %s: %v", opts.file, err)
			}
		}()
		out = f
	}
	w := bufio.NewWriter(out)
	defer func() {
		if err := w.Flush(); err != nil {
			log.Printf("Error flushing frames: %v", err)
		}
	}()

	return generate(ctx, opts, func(data []byte) error {
		if _, err := w.Write(data); err != nil {
			return err
		}
		return w.WriteByte('\n')
	})
}

// generate emits a zone frame and a system frame per step, then a closing end
// frame.
func generate(ctx context.Context, opts options, emit func([]byte) error) error {
	rng := rand.New(rand.NewSource(opts.seed))
	stepMinutes := 60 / opts.stepsPerHour
	zoneHours := 1.0 / float64(opts.stepsPerHour)

	send := func(f message.Frame) error {
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal frame: %w", err)
		}
		return emit(data)
	}

	month, day := 1, 1
	for d := 0; d < opts.days; d++ {
		for hour := 1; hour <= 24; hour++ {
			for s := 1; s <= opts.stepsPerHour; s++ {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				minute := s * stepMinutes
				frame := message.Frame{
					Type:            message.FrameTimestep,
					Step:            "zone",
					Month:           month,
					Day:             day,
					Hour:            hour,
					Minute:          minute,
					ZoneStepHours:   zoneHours,
					SystemStepHours: zoneHours / 2,
					Values:          zoneValues(rng, d, hour, minute, zoneHours),
				}
				if err := send(frame); err != nil {
					return err
				}

				frame.Step = "system"
				frame.Values = systemValues(rng, hour)
				if err := send(frame); err != nil {
					return err
				}
			}
		}
		day++
		if day > daysInMonth[month-1] {
			day = 1
			month = month%12 + 1
		}
	}
	return send(message.Frame{Type: message.FrameEnd})
}

func zoneValues(rng *rand.Rand, day, hour, minute int, stepHours float64) map[string]map[string]any {
	t := float64(hour-1) + float64(minute)/60
	outdoor := 5 + 8*math.Sin((t-9)/24*2*math.Pi) + float64(day%5)
	occupied := hour > 8 && hour <= 18

	temps := map[string]any{}
	for i, zone := range []string{"ZONE ONE", "ZONE TWO", "ZONE THREE"} {
		setpoint := 18.0
		if occupied {
			setpoint = 21.5
		}
		temps[zone] = setpoint + 0.3*float64(i) + rng.NormFloat64()*0.4 + (outdoor-10)*0.05
	}

	fanW := 150.0
	if occupied {
		fanW = 900 + rng.Float64()*200
	}
	return map[string]map[string]any{
		"Site Outdoor Air Drybulb Temperature": {"ENVIRONMENT": outdoor},
		"Zone Mean Air Temperature":            temps,
		// Fan energy is an accumulated quantity in joules over the step.
		"Fan Electric Energy": {"SUPPLY FAN 1": fanW * stepHours * 3600},
	}
}

func systemValues(rng *rand.Rand, hour int) map[string]map[string]any {
	load := 0.0
	if hour > 10 && hour <= 17 {
		load = 20000 + rng.Float64()*15000
	}
	// Occasional heat rejection shows up as a negative load.
	if hour <= 5 && rng.Float64() < 0.1 {
		load = -1000 * rng.Float64()
	}
	return map[string]map[string]any{
		"Chiller Evaporator Cooling Rate": {"CHILLER 1": load},
	}
}
