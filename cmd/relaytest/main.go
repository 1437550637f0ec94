// relaytest connects to a running relay as a consumer (or any other
// role) and prints the relayed traffic to the console.
// Usage: go run ./cmd/relaytest --url ws://localhost:8084/ --client-type viewer
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/screen-relay/internal/protocol"
)

func main() {
	url := flag.String("url", "ws://localhost:8084/", "relay WebSocket URL")
	clientType := flag.String("client-type", "viewer", "clientType to advertise in the handshake")
	clientID := flag.String("client-id", "", "clientId to advertise (empty = server assigns)")
	verbose := flag.Bool("verbose", false, "print full message JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(*url, nil)
	if err != nil {
		logger.Error("dial failed", "url", *url, "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	logger.Info("connected", "url", *url)

	hs := protocol.Handshake{
		Type: protocol.TypeHandshake,
		ClientInfo: protocol.ClientInfo{
			ClientType: *clientType,
			ClientID:   *clientID,
		},
	}
	if err := conn.WriteJSON(hs); err != nil {
		logger.Error("handshake send failed", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("closing")
		conn.WriteJSON(protocol.ClientDisconnect{
			Type:   protocol.TypeClientDisconnect,
			Reason: "relaytest shutting down",
		})
		conn.Close()
	}()

	frames := 0
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			logger.Info("connection closed", "error", err)
			return
		}

		env, err := protocol.Decode(data)
		if err != nil {
			logger.Warn("undecodable message", "error", err)
			continue
		}

		switch env.Type {
		case protocol.TypePing:
			conn.WriteJSON(protocol.Pong{Type: protocol.TypePong, Timestamp: time.Now().UnixMilli()})
		case protocol.TypeHandshakeAck:
			var ack protocol.HandshakeAck
			env.DecodeAs(&ack)
			logger.Info("handshake acknowledged",
				"client_id", ack.ClientInfo.ClientID,
				"server_status", ack.ServerStatus,
			)
			// Ask for the current producer roster right away.
			conn.WriteJSON(map[string]protocol.Type{"type": protocol.TypeGetDesktopClients})
		case protocol.TypeFrameData, protocol.TypeDualScreenFrame:
			frames++
			if *verbose {
				fmt.Println(string(data))
			} else if frames%30 == 1 {
				var frame protocol.FrameData
				env.DecodeAs(&frame)
				source := ""
				if frame.RoutingInfo != nil {
					source = frame.RoutingInfo.SourceClientID
				}
				logger.Info("frames flowing",
					"count", frames,
					"source", source,
					"size", fmt.Sprintf("%dx%d", frame.Width, frame.Height),
				)
			}
		default:
			if *verbose {
				fmt.Println(string(data))
			} else {
				logger.Info("message", "type", env.Type)
			}
		}
	}
}
