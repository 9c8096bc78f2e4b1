package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"seatplan/internal/client"
	"seatplan/internal/config"
	"seatplan/internal/models"

	rediscommon "seatplan/common/redis"
)

func main() {
	var (
		server      = flag.String("server", getEnv("SEATPLAN_SERVER", "http://localhost:8080"), "seatplan service base URL")
		requestFile = flag.String("request", "", "JSON placement request file (classes, rooms, seed)")
		students    = flag.String("students", "", "students workbook (one sheet per class)")
		subjects    = flag.String("subjects", "", "optional subjects workbook (one sheet per class)")
		rooms       = flag.String("rooms", "", "rooms workbook")
		assign      = flag.String("assign", "", "class to subject assignments, e.g. 'ISE1=Math,AS2=Economics'")
		seed        = flag.String("seed", "", "optional RNG seed")
		out         = flag.String("out", "", "save the exported seating workbook to this path")
		listRooms   = flag.Bool("list-rooms", false, "print the room catalog and exit")
		viaStream   = flag.Bool("stream", false, "publish the JSON request to the Redis request stream instead of calling HTTP")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *viaStream {
		if *requestFile == "" {
			log.Fatalf("-stream requires -request")
		}
		req, err := readRequest(*requestFile, *seed)
		if err != nil {
			log.Fatalf("Invalid request: %v", err)
		}
		publish(ctx, req)
		return
	}

	c := client.New(*server, nil)

	if *listRooms {
		list, err := c.Rooms(ctx)
		if err != nil {
			log.Fatalf("Failed to list rooms: %v", err)
		}
		for _, r := range list {
			fmt.Printf("%-14s capacity %4d  door %s\n", r.Name, r.Capacity, r.Door)
		}
		return
	}

	var (
		result *models.PlacementResult
		err    error
	)
	switch {
	case *requestFile != "":
		req, rerr := readRequest(*requestFile, *seed)
		if rerr != nil {
			log.Fatalf("Invalid request: %v", rerr)
		}
		result, err = c.Run(ctx, req)
	case *students != "" && *rooms != "":
		assignments, aerr := parseAssignments(*assign)
		if aerr != nil {
			log.Fatalf("Invalid -assign: %v", aerr)
		}
		seedVal, serr := parseSeed(*seed)
		if serr != nil {
			log.Fatalf("Invalid -seed: %v", serr)
		}
		req := client.ImportRequest{Assignments: assignments, Seed: seedVal}
		closers := []io.Closer{}
		req.Students = mustOpen(*students, &closers)
		req.Rooms = mustOpen(*rooms, &closers)
		if *subjects != "" {
			req.Subjects = mustOpen(*subjects, &closers)
		}
		result, err = c.Import(ctx, req)
		for _, cl := range closers {
			cl.Close()
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Placement failed: %v", err)
	}

	printSummary(result)

	if *out != "" {
		data, err := c.Export(ctx, result.RunID)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", *out, err)
		}
		fmt.Printf("\nSeating workbook saved to %s\n", *out)
	}
}

// publish events 模式：写入请求流，由服务端消费者处理
func publish(ctx context.Context, req models.PlacementRequest) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	rc := rediscommon.NewRedisClient(&cfg.Redis)
	defer rediscommon.Close(rc)

	id, err := rediscommon.PublishJSONToStream(ctx, rc, cfg.Placement.RequestStream, req)
	if err != nil {
		log.Fatalf("Failed to publish request: %v", err)
	}
	fmt.Printf("Request published to %s (message %s)\n", cfg.Placement.RequestStream, id)
}

func readRequest(path, seed string) (models.PlacementRequest, error) {
	var req models.PlacementRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if seed != "" {
		if req.Seed, err = parseSeed(seed); err != nil {
			return req, err
		}
	}
	return req, nil
}

// parseAssignments "ISE1=Math,AS2=Economics" → map
func parseAssignments(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		class, subject, ok := strings.Cut(part, "=")
		class, subject = strings.TrimSpace(class), strings.TrimSpace(subject)
		if !ok || class == "" || subject == "" {
			return nil, fmt.Errorf("expected CLASS=SUBJECT, got %q", part)
		}
		out[class] = subject
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no class selected")
	}
	return out, nil
}

func parseSeed(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func mustOpen(path string, closers *[]io.Closer) *os.File {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", path, err)
	}
	*closers = append(*closers, f)
	return f
}

func printSummary(r *models.PlacementResult) {
	s := r.Summary
	fmt.Printf("Run %s (seed %d)\n", r.RunID, r.Seed)
	fmt.Printf("Students: %d  Capacity: %d  Placed: %d  Unplaced: %d  Relaxed: %d  Utilization: %.1f%%\n",
		s.TotalStudents, s.TotalCapacity, s.Placed, s.UnplacedCount, s.RelaxedCount, s.Utilization)
	for _, room := range r.Rooms {
		fmt.Printf("  %-14s %3d/%-3d  relaxed %d\n", room.RoomName, room.OccupantCount, room.Capacity, room.RelaxedCount)
	}
	for _, u := range r.Unplaced {
		fmt.Printf("  unplaced: %s (%s)\n", u.Student, u.Subject)
	}
	for _, w := range r.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
