// Command loadtest times a batch of admission requests against a running
// revlimiter server, sequentially or concurrently, optionally with a
// unique requester identity per request.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/revlimiter/api"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:8888", "server base URL")
	route := flag.String("route", "/", "throttled route to hit")
	n := flag.Int("n", 1, "number of requests")
	async := flag.Bool("async", false, "send requests concurrently")
	uniquify := flag.Bool("uniquify", false, "use a fresh requester id per request")
	flag.Parse()

	target := *addr + *route
	client := &http.Client{Timeout: 10 * time.Second}

	var allowed, denied atomic.Int64

	request := func() {
		requester := "foouser"
		if *uniquify {
			requester = uuid.NewString()
		}

		body, err := json.Marshal(api.AdmitRequest{
			RequesterID: requester,
			ResourceID:  "barresource",
		})
		if err != nil {
			log.Fatal(err)
		}

		resp, err := client.Post(target, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		var decision api.AdmitResponse
		if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
			log.Fatalf("decoding response: %v", err)
		}
		io.Copy(io.Discard, resp.Body)

		if decision.AllowRequest {
			allowed.Add(1)
		} else {
			denied.Add(1)
		}
	}

	// One untimed request to pre-warm the client's connection.
	request()
	allowed.Store(0)
	denied.Store(0)

	start := time.Now()
	if *async {
		var wg sync.WaitGroup
		for i := 0; i < *n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				request()
			}()
		}
		wg.Wait()
	} else {
		for i := 0; i < *n; i++ {
			request()
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("%v\n", elapsed.Seconds())
	fmt.Printf("%d requests: %d allowed, %d denied\n", *n, allowed.Load(), denied.Load())
}
