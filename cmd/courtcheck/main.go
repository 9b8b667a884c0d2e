// Command courtcheck pokes a running gateway: REST endpoints first, then a
// websocket hello. Meant for deploy smoke tests and container debugging.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/quietbay/chesscourt/pkg/courtdto"
)

func main() {
	baseURL := strings.TrimRight(os.Getenv("COURT_URL"), "/")
	token := os.Getenv("GATEWAY_TOKEN")

	if baseURL == "" {
		log.Fatal("COURT_URL is required")
	}

	httpc := &http.Client{Timeout: 8 * time.Second}
	checkHealth(httpc, baseURL)
	checkBoards(httpc, baseURL)
	checkSocket(baseURL, token)
}

func checkHealth(httpc *http.Client, baseURL string) {
	resp, err := httpc.Get(baseURL + "/healthz")
	if err != nil {
		log.Printf("/healthz error: %v", err)
		return
	}
	defer resp.Body.Close()

	var health map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		log.Printf("/healthz decode error: %v", err)
		return
	}
	log.Printf("/healthz ok: status=%d online=%v", resp.StatusCode, health["online"])
}

func checkBoards(httpc *http.Client, baseURL string) {
	resp, err := httpc.Get(baseURL + "/boards")
	if err != nil {
		log.Printf("/boards error: %v", err)
		return
	}
	defer resp.Body.Close()

	var boards []courtdto.BoardSummary
	if err := json.NewDecoder(resp.Body).Decode(&boards); err != nil {
		log.Printf("/boards decode error: %v", err)
		return
	}
	names := make([]string, 0, len(boards))
	for _, b := range boards {
		names = append(names, b.Name)
	}
	log.Printf("/boards ok: %d board(s) %v", len(boards), names)
}

func checkSocket(baseURL, token string) {
	wsURL := baseURL + "/ws"
	if token != "" {
		wsURL += "?token=" + url.QueryEscape(token)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		log.Fatalf("ws dial error: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "check done")

	hello := courtdto.ClientFrame{
		Type:       courtdto.FrameHello,
		PlayerID:   "courtcheck",
		PlayerName: "Courtcheck",
	}
	if err := wsjson.Write(ctx, conn, hello); err != nil {
		log.Fatalf("ws hello error: %v", err)
	}
	var greeting courtdto.ServerFrame
	if err := wsjson.Read(ctx, conn, &greeting); err != nil {
		log.Fatalf("ws greeting error: %v", err)
	}
	log.Printf("ws ok: %s", strings.Join(greeting.Lines, " / "))

	probe := courtdto.ClientFrame{Type: courtdto.FrameCommand, Text: "boards"}
	if err := wsjson.Write(ctx, conn, probe); err != nil {
		log.Fatalf("ws command error: %v", err)
	}
	var reply courtdto.ServerFrame
	if err := wsjson.Read(ctx, conn, &reply); err != nil {
		log.Fatalf("ws reply error: %v", err)
	}
	for _, line := range reply.Lines {
		log.Printf("ws boards: %s", line)
	}
}
