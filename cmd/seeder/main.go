// The seeder publishes synthetic upload events to the uploads topic so the
// pipeline can be exercised without the bot frontend or the extraction
// service. POST /seed/tier and /seed/stats each publish one event with an
// inline extraction payload.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/caldweld/TowerScoreBoardBot/pkg/extract"
	"github.com/caldweld/TowerScoreBoardBot/pkg/parser"
	"github.com/caldweld/TowerScoreBoardBot/pkg/producer"
)

var suffixes = []string{"K", "M", "B", "T", "q"}

func randomCoins() string {
	return fmt.Sprintf("%.2f %s", 1+rand.Float64()*999, suffixes[rand.Intn(len(suffixes))])
}

func randomTierExtraction() *extract.Result {
	tiers := make(map[int]extract.TierObservation)
	for n := 1; n <= 1+rand.Intn(18); n++ {
		tiers[n] = extract.TierObservation{
			Wave:  rand.Intn(5000),
			Coins: randomCoins(),
		}
	}
	return &extract.Result{
		Kind:       extract.KindTier,
		Confidence: 0.8 + rand.Float64()*0.2,
		Tiers:      &extract.TierExtraction{Tiers: tiers},
	}
}

func randomStatsExtraction() *extract.Result {
	stats := extract.StatsExtraction{
		"game_started":  "22052025",
		"coins_earned":  randomCoins(),
		"cash_earned":   randomCoins(),
		"damage_dealt":  randomCoins(),
		"orb_kills":     randomCoins(),
		"waves_skipped": fmt.Sprintf("%d", rand.Intn(100000)),
	}
	return &extract.Result{
		Kind:       extract.KindStats,
		Confidence: 0.8 + rand.Float64()*0.2,
		Stats:      &stats,
	}
}

func main() {
	addr := flag.String("addr", ":8082", "HTTP server address")
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers, comma separated")
	topic := flag.String("topic", "uploads", "Uploads topic")
	players := flag.Int("players", 20, "Synthetic player pool size")
	flag.Parse()

	kafkaProducer := producer.NewKafkaProducer(producer.Config{
		Brokers: strings.Split(*brokers, ","),
		Topic:   *topic,
	})
	defer kafkaProducer.Close()

	publish := func(w http.ResponseWriter, r *http.Request, extraction *extract.Result) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		playerNum := rand.Intn(*players)
		event := parser.UploadEvent{
			ID:          fmt.Sprintf("seed-%d-%d", time.Now().UnixNano(), rand.Int63()),
			PlayerKey:   fmt.Sprintf("%06d", playerNum),
			DisplayName: fmt.Sprintf("seed_player_%d", playerNum),
			Kind:        extraction.Kind,
			Extraction:  extraction,
			SubmittedAt: time.Now().UTC(),
		}

		value, err := json.Marshal(event)
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to encode event: %v", err), http.StatusInternalServerError)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := kafkaProducer.Publish(ctx, []byte(event.PlayerKey), value); err != nil {
			http.Error(w, fmt.Sprintf("failed to publish: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(event)
	}

	http.HandleFunc("/seed/tier", func(w http.ResponseWriter, r *http.Request) {
		publish(w, r, randomTierExtraction())
	})
	http.HandleFunc("/seed/stats", func(w http.ResponseWriter, r *http.Request) {
		publish(w, r, randomStatsExtraction())
	})
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{Addr: *addr}

	go func() {
		fmt.Printf("Seeder starting on %s (Kafka: %s topic %s)\n", *addr, *brokers, *topic)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	fmt.Println("\nShutting down seeder...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	server.Shutdown(shutdownCtx)
}
