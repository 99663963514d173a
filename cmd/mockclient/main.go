// Command mockclient spawns N concurrent TCP clients against the game
// socket, each generating WoW-realistic traffic (movement, spell casts,
// combat) at a configurable rate, for stress-testing and fault-injection
// exercises.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net"
	"sync"
	"time"
)

var spellIDs = []int{100, 101, 102, 103, 200, 201, 300}
var castTimes = []int{0, 0, 20, 30, 40}

const defaultTargetID = 1_000_001

type clientConfig struct {
	host             string
	port             int
	actionsPerSecond float64
	duration         time.Duration
}

type clientResult struct {
	clientID     int
	connected    bool
	actionsSent  int
	duration     time.Duration
	err          error
}

func chooseAction(clientID int, x, y, z float64) (map[string]any, float64, float64, float64) {
	roll := rand.Float64()
	switch {
	case roll < 0.50:
		nx := x + (rand.Float64()*10 - 5)
		ny := y + (rand.Float64()*10 - 5)
		nz := z + (rand.Float64() - 0.5)
		return map[string]any{
			"type":       "movement",
			"session_id": clientID,
			"position":   map[string]any{"x": nx, "y": ny, "z": nz},
		}, nx, ny, nz
	case roll < 0.80:
		return map[string]any{
			"type":            "spell_cast",
			"session_id":      clientID,
			"action":          "CAST_START",
			"spell_id":        spellIDs[rand.Intn(len(spellIDs))],
			"cast_time_ticks": castTimes[rand.Intn(len(castTimes))],
		}, x, y, z
	default:
		damageType := "PHYSICAL"
		if rand.Intn(2) == 1 {
			damageType = "MAGICAL"
		}
		return map[string]any{
			"type":              "combat",
			"session_id":        clientID,
			"action":            "ATTACK",
			"target_session_id": defaultTargetID,
			"base_damage":       10 + rand.Intn(41),
			"damage_type":       damageType,
		}, x, y, z
	}
}

func runClient(id int, cfg clientConfig) clientResult {
	start := time.Now()
	addr := fmt.Sprintf("%s:%d", cfg.host, cfg.port)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return clientResult{clientID: id, err: err}
	}
	defer conn.Close()

	writer := bufio.NewWriter(conn)
	interval := time.Duration(float64(time.Second) / cfg.actionsPerSecond)
	deadline := start.Add(cfg.duration)

	var x, y, z float64
	sent := 0
	for time.Now().Before(deadline) {
		action, nx, ny, nz := chooseAction(id, x, y, z)
		x, y, z = nx, ny, nz

		encoded, err := json.Marshal(action)
		if err != nil {
			continue
		}
		writer.Write(encoded)
		writer.WriteByte('\n')
		writer.Flush()
		sent++

		time.Sleep(interval)
	}

	return clientResult{clientID: id, connected: true, actionsSent: sent, duration: time.Since(start)}
}

func main() {
	host := flag.String("host", "localhost", "game server host")
	port := flag.Int("port", 8080, "game server port")
	count := flag.Int("clients", 10, "number of concurrent clients")
	rate := flag.Float64("rate", 2.0, "actions per second per client")
	duration := flag.Duration("duration", 10*time.Second, "how long each client runs")
	flag.Parse()

	cfg := clientConfig{host: *host, port: *port, actionsPerSecond: *rate, duration: *duration}

	var wg sync.WaitGroup
	results := make([]clientResult, *count)
	for i := 0; i < *count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			results[id] = runClient(id, cfg)
		}(i)
	}
	wg.Wait()

	successful, totalActions := 0, 0
	for _, r := range results {
		if r.connected {
			successful++
		}
		totalActions += r.actionsSent
		if r.err != nil {
			log.Printf("client %d failed: %v", r.clientID, r.err)
		}
	}

	fmt.Printf("clients=%d successful=%d failed=%d actionsSent=%d\n",
		*count, successful, *count-successful, totalActions)
}
