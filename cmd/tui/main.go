package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/humanbelnik/restaurantpicker/internal/model"
)

type WSEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type BookResponse struct {
	RoomCode string `json:"room_code"`
}

type StatusResponse struct {
	Status       string `json:"status"`
	Participants int    `json:"participants"`
	Capacity     int    `json:"capacity"`
	Mode         string `json:"mode"`
}

type HistoryResponse struct {
	Selections []model.SelectionRecord `json:"selections"`
}

type Client struct {
	baseURL     string
	httpClient  *http.Client
	wsConn      *websocket.Conn
	wsDone      chan struct{}
	scanner     *bufio.Scanner
	writeMu     sync.Mutex
	mu          sync.Mutex
	currentRoom string
	raceRound   string
	raceGoAt    time.Time
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		wsDone:     make(chan struct{}),
	}
}

func (c *Client) SetScanner(scanner *bufio.Scanner) {
	c.scanner = scanner
}

func (c *Client) Connect() error {
	baseURL, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %v", err)
	}

	scheme := "ws"
	if baseURL.Scheme == "https" {
		scheme = "wss"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   baseURL.Host,
		Path:   baseURL.Path + "/ws",
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("websocket connection failed: %v", err)
	}
	c.wsConn = conn

	go c.listenWebSocket()
	return nil
}

func (c *Client) send(typ string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.wsConn.WriteJSON(WSEvent{Type: typ, Payload: raw})
}

func (c *Client) prompt(text string) (string, error) {
	fmt.Print(text)
	if !c.scanner.Scan() {
		return "", fmt.Errorf("input closed")
	}
	return strings.TrimSpace(c.scanner.Text()), nil
}

func (c *Client) room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentRoom
}

func (c *Client) CreateRoom() error {
	resp, err := c.httpClient.Post(c.baseURL+"/rooms", "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to book a room: %s - %s", resp.Status, string(body))
	}

	var booked BookResponse
	if err := json.NewDecoder(resp.Body).Decode(&booked); err != nil {
		return err
	}
	return c.send("create-session", map[string]string{"roomCode": booked.RoomCode})
}

func (c *Client) JoinRoom() error {
	code, err := c.prompt("Room code: ")
	if err != nil {
		return err
	}
	return c.send("join-session", map[string]string{"roomCode": code})
}

func (c *Client) Suggest() error {
	name, err := c.prompt("Restaurant: ")
	if err != nil {
		return err
	}
	return c.send("suggest-restaurant", map[string]string{"name": name})
}

func (c *Client) SetMode() error {
	mode, err := c.prompt("Mode (wheel / quick-draw): ")
	if err != nil {
		return err
	}
	return c.send("game-option-changed", map[string]string{"mode": mode})
}

func (c *Client) Spin() error {
	return c.send("spin-wheel", nil)
}

func (c *Client) StartQuickDraw() error {
	return c.send("start-quick-draw", nil)
}

func (c *Client) Leave() error {
	return c.send("leave-session", nil)
}

func (c *Client) Delete() error {
	return c.send("delete-session", nil)
}

func (c *Client) Status() error {
	code := c.room()
	if code == "" {
		return fmt.Errorf("join a room first")
	}

	resp, err := c.httpClient.Get(fmt.Sprintf("%s/rooms/%s/status", c.baseURL, code))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to get status: %s - %s", resp.Status, string(body))
	}

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return err
	}
	fmt.Printf("Room %s: %s, %d/%d people, mode %s\n",
		code, status.Status, status.Participants, status.Capacity, status.Mode)
	return nil
}

func (c *Client) History() error {
	resp, err := c.httpClient.Get(c.baseURL + "/history?limit=10")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to get history: %s - %s", resp.Status, string(body))
	}

	var history HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return err
	}
	for _, s := range history.Selections {
		fmt.Printf("%s  %-6s %-10s %s\n", s.DecidedAt.Local().Format(time.DateTime), s.RoomCode, s.Mode, s.Restaurant)
	}
	return nil
}

// react reports the time since quick-draw-go. Returns false when no race is waiting for input.
func (c *Client) react() bool {
	c.mu.Lock()
	round, goAt := c.raceRound, c.raceGoAt
	c.raceRound = ""
	c.mu.Unlock()

	if round == "" {
		return false
	}

	ms := time.Since(goAt).Milliseconds()
	if err := c.send("quick-draw-finished", map[string]any{"reactionMs": ms, "roundId": round}); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
	fmt.Printf("Your time: %d ms\n", ms)
	return true
}

func (c *Client) listenWebSocket() {
	defer close(c.wsDone)

	for {
		var event WSEvent
		if err := c.wsConn.ReadJSON(&event); err != nil {
			fmt.Printf("WebSocket error: %v\n", err)
			return
		}

		switch event.Type {
		case model.EventSessionJoined:
			var p model.SessionJoinedPayload
			if json.Unmarshal(event.Payload, &p) == nil {
				c.mu.Lock()
				c.currentRoom = string(p.RoomCode)
				c.mu.Unlock()
				fmt.Printf("Joined room %s as %s\n", p.RoomCode, p.Role)
			}

		case model.EventCurrentUsers:
			var p model.CurrentUsersPayload
			if json.Unmarshal(event.Payload, &p) == nil {
				fmt.Printf("People in room: %d/%d\n", p.Count, p.Capacity)
			}

		case model.EventCurrentRestaurants:
			var list []model.Suggestion
			if json.Unmarshal(event.Payload, &list) == nil {
				names := make([]string, 0, len(list))
				for _, s := range list {
					names = append(names, s.Name)
				}
				fmt.Printf("Suggestions: %s\n", strings.Join(names, ", "))
			}

		case model.EventRestaurantSuggest:
			var s model.Suggestion
			if json.Unmarshal(event.Payload, &s) == nil {
				fmt.Printf("New suggestion: %s\n", s.Name)
			}

		case model.EventGameOptionUpdated:
			fmt.Printf("Mode: %s\n", event.Payload)

		case model.EventQuickDrawStarted:
			var p model.QuickDrawStartedPayload
			if json.Unmarshal(event.Payload, &p) == nil {
				fmt.Printf("Quick draw in %d... press Enter on GO!\n", p.Countdown)
			}

		case model.EventQuickDrawGo:
			var p model.QuickDrawGoPayload
			if json.Unmarshal(event.Payload, &p) == nil {
				c.mu.Lock()
				c.raceRound, c.raceGoAt = p.RoundID, time.Now()
				c.mu.Unlock()
				fmt.Println("GO!")
			}

		case model.EventRestaurantSelected:
			var p model.RestaurantSelectedPayload
			if json.Unmarshal(event.Payload, &p) == nil {
				fmt.Printf("The wheel picked: %s\n", p.Restaurant.Name)
			}

		case model.EventQuickDrawWinner:
			var p model.QuickDrawWinnerPayload
			if json.Unmarshal(event.Payload, &p) == nil {
				fmt.Printf("Fastest draw (%d ms) picked: %s\n", p.WinnerScore, p.Restaurant.Name)
			}

		case model.EventSelectionAborted:
			fmt.Println("Selection aborted")

		case model.EventSessionExists, model.EventRoomFull, model.EventSessionNotFound:
			fmt.Printf("Room check: %s\n", event.Type)

		case model.EventSessionDeleted:
			var p model.SessionDeletedPayload
			if json.Unmarshal(event.Payload, &p) == nil {
				c.mu.Lock()
				c.currentRoom = ""
				c.mu.Unlock()
				fmt.Printf("Room %s closed: %s\n", p.RoomCode, p.Reason)
			}

		case model.EventError:
			var p model.ErrorPayload
			if json.Unmarshal(event.Payload, &p) == nil {
				fmt.Printf("Error (%s): %s\n", p.Kind, p.Message)
			}
		}
	}
}

func (c *Client) Close() {
	if c.wsConn != nil {
		c.wsConn.Close()
		<-c.wsDone
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080/api/v1", "server base URL")
	flag.Parse()

	client := NewClient(*baseURL)
	if err := client.Connect(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	scanner := bufio.NewScanner(os.Stdin)
	client.SetScanner(scanner)

	actions := map[string]func() error{
		"1":  client.CreateRoom,
		"2":  client.JoinRoom,
		"3":  client.Suggest,
		"4":  client.SetMode,
		"5":  client.Spin,
		"6":  client.StartQuickDraw,
		"7":  client.Status,
		"8":  client.History,
		"9":  client.Leave,
		"10": client.Delete,
	}

	for {
		fmt.Println("\n=== Restaurant Picker ===")
		fmt.Println("1. Create room")
		fmt.Println("2. Join room")
		fmt.Println("3. Suggest restaurant")
		fmt.Println("4. Change mode")
		fmt.Println("5. Spin the wheel")
		fmt.Println("6. Start quick draw")
		fmt.Println("7. Room status")
		fmt.Println("8. Recent picks")
		fmt.Println("9. Leave room")
		fmt.Println("10. Delete room")
		fmt.Println("0. Exit")

		if !scanner.Scan() {
			break
		}
		if client.react() {
			continue
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "0" {
			fmt.Println("Bye!")
			return
		}

		action, ok := actions[input]
		if !ok {
			fmt.Println("Unknown choice")
			continue
		}
		if err := action(); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}
