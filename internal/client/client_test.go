package client

import (
	"context"
	"testing"
	"time"

	"github.com/muurk/scenebridge/internal/bridge"
	"github.com/muurk/scenebridge/internal/queue"
	"github.com/muurk/scenebridge/internal/scene"
	"github.com/muurk/scenebridge/internal/server"
)

func startServer(t *testing.T) (*server.Server, *queue.Queue) {
	t.Helper()

	inbound := queue.New()
	srv := server.New(server.Config{Host: "127.0.0.1", Port: 0}, inbound)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = srv.Stop(time.Second) })
	return srv, inbound
}

func url(srv *server.Server) string {
	return "ws://" + srv.Addr().String()
}

// collect waits until n messages arrived and returns them.
func collect(t *testing.T, q *queue.Queue, n int) []string {
	t.Helper()

	var got []string
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < n && time.Now().Before(deadline) {
		got = append(got, q.Drain()...)
		time.Sleep(5 * time.Millisecond)
	}
	if len(got) != n {
		t.Fatalf("got %d messages %q, want %d", len(got), got, n)
	}
	return got
}

func TestOperationsWireFormat(t *testing.T) {
	tests := []struct {
		name string
		op   func(ctx context.Context, c *Client) error
		want []string
	}{
		{
			name: "rotate camera sends one indexed set per non-zero axis",
			op:   func(ctx context.Context, c *Client) error { return c.RotateCamera(ctx, 1.1, 0, 0.785) },
			want: []string{
				`{"type":"set_property","target":"Camera","data_path":"rotation_euler","value":1.1,"index":0}`,
				`{"type":"set_property","target":"Camera","data_path":"rotation_euler","value":0.785,"index":2}`,
			},
		},
		{
			name: "focus on",
			op:   func(ctx context.Context, c *Client) error { return c.FocusOn(ctx, "Cube") },
			want: []string{`{"type":"focus_on","target":"Cube"}`},
		},
		{
			name: "camera position",
			op:   func(ctx context.Context, c *Client) error { return c.SetCameraPosition(ctx, 5, -5, 3) },
			want: []string{`{"type":"set_property","target":"Camera","data_path":"location","value":[5,-5,3],"index":-1}`},
		},
		{
			name: "camera zoom sets the z slot",
			op:   func(ctx context.Context, c *Client) error { return c.SetCameraZoom(ctx, 10) },
			want: []string{`{"type":"set_property","target":"Camera","data_path":"location","value":10,"index":2}`},
		},
		{
			name: "list objects",
			op:   func(ctx context.Context, c *Client) error { return c.ListObjects(ctx) },
			want: []string{`{"type":"list_objects"}`},
		},
		{
			name: "create cube",
			op:   func(ctx context.Context, c *Client) error { return c.CreateCube(ctx, 0, 0, 0) },
			want: []string{`{"type":"create_object","object_type":"cube","location":[0,0,0]}`},
		},
		{
			name: "create sphere",
			op:   func(ctx context.Context, c *Client) error { return c.CreateSphere(ctx, 3, 0, 0) },
			want: []string{`{"type":"create_object","object_type":"sphere","location":[3,0,0]}`},
		},
		{
			name: "import glb",
			op:   func(ctx context.Context, c *Client) error { return c.ImportGLB(ctx, "examples/trash_can.glb") },
			want: []string{`{"type":"import_glb","filename":"examples/trash_can.glb"}`},
		},
		{
			name: "uniform scale",
			op:   func(ctx context.Context, c *Client) error { return c.SetObjectScale(ctx, "Cube", 1.5) },
			want: []string{`{"type":"set_property","target":"Cube","data_path":"scale","value":[1.5,1.5,1.5],"index":-1}`},
		},
		{
			name: "object rotation",
			op:   func(ctx context.Context, c *Client) error { return c.SetObjectRotation(ctx, "Sphere", 0.3, 0, 0) },
			want: []string{`{"type":"set_property","target":"Sphere","data_path":"rotation_euler","value":[0.3,0,0],"index":-1}`},
		},
		{
			name: "object position",
			op:   func(ctx context.Context, c *Client) error { return c.SetObjectPosition(ctx, "Cube", 1, 2, 3) },
			want: []string{`{"type":"set_property","target":"Cube","data_path":"location","value":[1,2,3],"index":-1}`},
		},
		{
			name: "light intensity addresses the data block",
			op:   func(ctx context.Context, c *Client) error { return c.SetLightIntensity(ctx, "Light", 5) },
			want: []string{`{"type":"set_property","target":"Light","data_path":"data.energy","value":5,"index":-1}`},
		},
		{
			name: "light color",
			op:   func(ctx context.Context, c *Client) error { return c.SetLightColor(ctx, "Light", 1, 0.9, 0.8) },
			want: []string{`{"type":"set_property","target":"Light","data_path":"data.color","value":[1,0.9,0.8],"index":-1}`},
		},
		{
			name: "light position",
			op:   func(ctx context.Context, c *Client) error { return c.SetLightPosition(ctx, "Light", 2, 2, 5) },
			want: []string{`{"type":"set_property","target":"Light","data_path":"location","value":[2,2,5],"index":-1}`},
		},
		{
			name: "ping",
			op:   func(ctx context.Context, c *Client) error { return c.Ping(ctx) },
			want: []string{`{"type":"ping"}`},
		},
	}

	srv, inbound := startServer(t)
	c := New(url(srv))
	defer func() { _ = c.Close() }()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(context.Background(), c); err != nil {
				t.Fatalf("operation error = %v", err)
			}
			got := collect(t, inbound, len(tt.want))
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("message %d = %s\nwant        %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNoOpOperationsSendNothing(t *testing.T) {
	srv, inbound := startServer(t)
	c := New(url(srv))
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if err := c.RotateCamera(ctx, 0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := c.SetObjectRotation(ctx, "Cube", 0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if c.Connected() {
		t.Error("no-op operations should not open a connection")
	}

	// A marker proves nothing else was queued ahead of it
	if err := c.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if got := collect(t, inbound, 1); got[0] != `{"type":"ping"}` {
		t.Errorf("first message = %s", got[0])
	}
}

func TestLazyReconnect(t *testing.T) {
	srv, inbound := startServer(t)
	c := New(url(srv))
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	collect(t, inbound, 1)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if c.Connected() {
		t.Fatal("Connected() after Close")
	}

	// The server returns to LISTENING and the next send dials again
	if err := c.FocusOn(ctx, "Cube"); err != nil {
		t.Fatalf("send after Close error = %v", err)
	}
	if got := collect(t, inbound, 1); got[0] != `{"type":"focus_on","target":"Cube"}` {
		t.Errorf("message = %s", got[0])
	}
	_ = c.Close()
}

func TestDialFailure(t *testing.T) {
	srv, _ := startServer(t)
	addr := url(srv)
	_ = srv.Stop(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Dial(ctx, addr); err == nil {
		t.Fatal("Dial() to a stopped server should fail")
	}

	c := New(addr)
	if err := c.Ping(ctx); err == nil {
		t.Fatal("Ping() to a stopped server should fail")
	}
}

func TestReadReplyNotConnected(t *testing.T) {
	c := New("")
	if c.URL() != DefaultURL {
		t.Errorf("URL() = %q, want %q", c.URL(), DefaultURL)
	}
	if _, err := c.ReadReply(context.Background()); err != ErrNotConnected {
		t.Errorf("ReadReply() error = %v, want ErrNotConnected", err)
	}
}

func TestRepliesThroughBridge(t *testing.T) {
	config := bridge.DefaultConfig()
	config.Server.Port = 0
	b := bridge.New(config, scene.DefaultScene())
	if err := b.Start(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = bridge.RunScheduler(ctx, b.Step) }()
	defer func() { _ = b.Stop(time.Second) }()

	c, err := Dial(ctx, "ws://"+b.Server().Addr().String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer func() { _ = c.Close() }()

	readCtx, readCancel := context.WithTimeout(ctx, 2*time.Second)
	defer readCancel()

	if err := c.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	reply, err := c.ReadReply(readCtx)
	if err != nil {
		t.Fatalf("ReadReply() error = %v", err)
	}
	if reply.Type != "pong" || !reply.OK {
		t.Errorf("reply = %+v, want pong", reply)
	}

	if err := c.CreateSphere(ctx, 3, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := c.ListObjects(ctx); err != nil {
		t.Fatal(err)
	}
	reply, err = c.ReadReply(readCtx)
	if err != nil {
		t.Fatalf("ReadReply() error = %v", err)
	}
	want := []string{"Camera", "Light", "Cube", "Sphere"}
	if reply.Type != "objects" || len(reply.Objects) != len(want) {
		t.Fatalf("reply = %+v, want objects %v", reply, want)
	}
	for i := range want {
		if reply.Objects[i] != want[i] {
			t.Errorf("objects[%d] = %q, want %q", i, reply.Objects[i], want[i])
		}
	}
}

func TestReadReplyHonoursContext(t *testing.T) {
	srv, _ := startServer(t)
	ctx := context.Background()

	c, err := Dial(ctx, url(srv))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close() }()

	readCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := c.ReadReply(readCtx); err != context.DeadlineExceeded {
		t.Errorf("ReadReply() error = %v, want context.DeadlineExceeded", err)
	}
}
