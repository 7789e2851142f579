// echo_server.go is a minimal upstream that reports the headers it receives,
// for exercising the gateway's header injection by hand.
// Usage: go run echo_server.go [-addr :9000]
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"sort"
)

func main() {
	addr := flag.String("addr", ":9000", "listen address")
	flag.Parse()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		headers := map[string]string{}
		for name := range r.Header {
			headers[name] = r.Header.Get(name)
		}

		names := make([]string, 0, len(headers))
		for name := range headers {
			names = append(names, name)
		}
		sort.Strings(names)

		resp := map[string]any{
			"method":  r.Method,
			"path":    r.URL.Path,
			"headers": headers,
			"order":   names,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("echo_server: encode: %v", err)
		}
	})

	log.Printf("echo_server listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
