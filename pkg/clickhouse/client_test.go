package clickhouse

import (
	"testing"
	"time"
)

func TestDSN(t *testing.T) {
	got := DSN(ClientConfig{
		Host: "ch", Port: 9000, Database: "brain", User: "u", Password: "p",
		DialTimeout: 5 * time.Second, MaxExecTime: time.Minute, AsyncInsert: true, WaitForAsync: true,
	})
	want := "clickhouse://u:p@ch:9000/brain?async_insert=1&dial_timeout=5s&max_execution_time=60&wait_for_async_insert=1"
	if got != want {
		t.Fatalf("got %s\nwant %s", got, want)
	}
}

func TestDSNHTTP(t *testing.T) {
	got := DSN(ClientConfig{Host: "ch", Port: 8123, Database: "default", User: "default", UseHTTP: true})
	if got != "http://default:@ch:8123/default" {
		t.Fatalf("got %s", got)
	}
}
