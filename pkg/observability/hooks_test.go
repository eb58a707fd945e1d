package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	g := NoopGatewayHooks{}
	g.OnOperationStart(ctx, "topAssets")
	g.OnOperationComplete(ctx, "topAssets", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "topAssets")
	c.OnCacheMiss(ctx, "assetDetail")
	c.OnCacheSet(ctx, "search", 1024)
	c.OnCacheError(ctx, "search", nil)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.coingecko.com", "/api/v3/coins/markets")
	h.OnResponse(ctx, "GET", "api.coingecko.com", "/api/v3/coins/markets", 200, time.Second)
	h.OnError(ctx, "GET", "api.coingecko.com", "/api/v3/coins/markets", nil)

	r := NoopRetryHooks{}
	r.OnRetry(ctx, 2, time.Second, nil)
	r.OnGiveUp(ctx, 4, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Gateway().(NoopGatewayHooks); !ok {
		t.Error("Gateway() should return NoopGatewayHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}
	if _, ok := Retry().(NoopRetryHooks); !ok {
		t.Error("Retry() should return NoopRetryHooks by default")
	}

	customGateway := &testGatewayHooks{}
	SetGatewayHooks(customGateway)
	if Gateway() != customGateway {
		t.Error("SetGatewayHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	customRetry := &testRetryHooks{}
	SetRetryHooks(customRetry)
	if Retry() != customRetry {
		t.Error("SetRetryHooks should set custom hooks")
	}

	Reset()
	if _, ok := Gateway().(NoopGatewayHooks); !ok {
		t.Error("Reset() should restore NoopGatewayHooks")
	}
	if _, ok := Retry().(NoopRetryHooks); !ok {
		t.Error("Reset() should restore NoopRetryHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testCacheHooks{}
	SetCacheHooks(custom)
	SetCacheHooks(nil)

	if Cache() != custom {
		t.Error("SetCacheHooks(nil) should be ignored")
	}
}

type testGatewayHooks struct{ NoopGatewayHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
type testRetryHooks struct{ NoopRetryHooks }
