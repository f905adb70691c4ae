package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogri-la/gear-journey-go/src/catalogue"
	httpClient "github.com/ogri-la/gear-journey-go/src/http"
	"github.com/ogri-la/gear-journey-go/src/progression"
	"github.com/ogri-la/gear-journey-go/src/slots"
	"github.com/ogri-la/gear-journey-go/src/types"
)

const assetBase = "https://wow.zamimg.com"

type fakeDisplayIDs struct {
	infos map[int]types.DisplayInfo
	err   error
}

func (f *fakeDisplayIDs) ItemDisplayInfo(ctx context.Context, itemID int) (types.DisplayInfo, error) {
	if f.err != nil {
		return types.DisplayInfo{}, f.err
	}
	return f.infos[itemID], nil
}

func testItems() []types.Item {
	return []types.Item{
		{ItemID: 10, Name: "Lucky Fishing Hat", Slot: "Head", RequiredLevel: 15, ItemLevel: 20, Quality: types.RareQuality},
		{ItemID: 11, Name: "Lionheart Helm", Slot: "Head", RequiredLevel: 50, ItemLevel: 59, Quality: types.EpicQuality},
		{ItemID: 12, Name: "Band of Accuria", Slot: "Finger", RequiredLevel: 60, ItemLevel: 65, Quality: types.EpicQuality},
	}
}

func loadedCatalogue(t *testing.T) *catalogue.Service {
	t.Helper()
	service := catalogue.NewService(catalogue.StaticLoader(testItems()))
	require.NoError(t, service.Load(context.Background()))
	return service
}

func newTestServer(t *testing.T, cat Catalogue, displayIDs DisplayInfoSource) (*Server, *httpClient.MockHTTPClient) {
	t.Helper()
	assets := httpClient.NewMockHTTPClient()
	return New(Config{AssetBase: assetBase + "/"}, cat, displayIDs, assets), assets
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestDisplayID(t *testing.T) {
	displayIDs := &fakeDisplayIDs{infos: map[int]types.DisplayInfo{
		14152: {DisplayID: 18361, SlotID: 20},
	}}
	s, _ := newTestServer(t, loadedCatalogue(t), displayIDs)

	tests := []struct {
		name         string
		path         string
		status       int
		body         string
		cacheControl string
	}{
		{"resolved", "/api/wowhead-display-id/14152", http.StatusOK, `{"displayId":18361,"slotId":20}`, "public, max-age=86400"},
		{"unknown", "/api/wowhead-display-id/1", http.StatusOK, `{"displayId":0,"slotId":0}`, ""},
		{"not a number", "/api/wowhead-display-id/abc", http.StatusBadRequest, `{"displayId":0,"slotId":0}`, ""},
		{"not positive", "/api/wowhead-display-id/0", http.StatusBadRequest, `{"displayId":0,"slotId":0}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
			assert.Equal(t, tt.cacheControl, rec.Header().Get("Cache-Control"))
		})
	}
}

func TestDisplayID_UpstreamFailure(t *testing.T) {
	s, _ := newTestServer(t, loadedCatalogue(t), &fakeDisplayIDs{err: errors.New("connection refused")})

	rec := get(t, s, "/api/wowhead-display-id/14152")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"displayId":0,"slotId":0}`, rec.Body.String())
}

func TestProxy(t *testing.T) {
	s, assets := newTestServer(t, loadedCatalogue(t), &fakeDisplayIDs{})

	model := []byte{0x4d, 0x44, 0x32, 0x30}
	assets.SetResponse(assetBase+"/modelviewer/classic/mo3/12345.mo3", &httpClient.Response{
		StatusCode: 200,
		Body:       model,
		Headers:    map[string]string{"Content-Type": "application/x-mo3"},
	})
	assets.SetResponse(assetBase+"/modelviewer/classic/textures/1.png", &httpClient.Response{StatusCode: 200, Body: []byte("png")})
	assets.SetResponse(assetBase+"/modelviewer/classic/meta/armor/5/999.json", &httpClient.Response{StatusCode: 404})
	assets.SetResponse(assetBase+"/modelviewer/classic/mo3/404.mo3", &httpClient.Response{StatusCode: 404})
	assets.SetResponse(assetBase+"/modelviewer/classic/meta/item/1.json", &httpClient.Response{StatusCode: 500})
	assets.SetError(assetBase+"/modelviewer/classic/mo3/down.mo3", errors.New("timeout"))

	t.Run("forwards body and type", func(t *testing.T) {
		rec := get(t, s, "/api/wowhead-proxy/modelviewer/classic/mo3/12345.mo3")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, model, rec.Body.Bytes())
		assert.Equal(t, "application/x-mo3", rec.Header().Get("Content-Type"))
		assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("default content type", func(t *testing.T) {
		rec := get(t, s, "/api/wowhead-proxy/modelviewer/classic/textures/1.png")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	})

	t.Run("missing meta falls back", func(t *testing.T) {
		rec := get(t, s, "/api/wowhead-proxy/modelviewer/classic/meta/armor/5/999.json")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"displayId":0,"itemClass":0}`, rec.Body.String())
	})

	for name, path := range map[string]string{
		"missing model":   "/api/wowhead-proxy/modelviewer/classic/mo3/404.mo3",
		"meta error":      "/api/wowhead-proxy/modelviewer/classic/meta/item/1.json",
		"transport error": "/api/wowhead-proxy/modelviewer/classic/mo3/down.mo3",
	} {
		t.Run(name, func(t *testing.T) {
			rec := get(t, s, path)
			assert.Equal(t, http.StatusBadGateway, rec.Code)
			assert.Equal(t, "Proxy error\n", rec.Body.String())
		})
	}
}

func TestItems(t *testing.T) {
	s, _ := newTestServer(t, loadedCatalogue(t), &fakeDisplayIDs{})

	rec := get(t, s, "/data/items.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var items []types.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 3)
}

func TestItems_NotLoaded(t *testing.T) {
	s, _ := newTestServer(t, catalogue.NewService(catalogue.StaticLoader(testItems())), &fakeDisplayIDs{})

	rec := get(t, s, "/data/items.json")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(t, s, "/api/progression?bis=10")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProgression(t *testing.T) {
	s, _ := newTestServer(t, loadedCatalogue(t), &fakeDisplayIDs{})

	tests := []struct {
		name     string
		query    string
		level    int
		equipped map[slots.Slot]int
		total    int
	}{
		{"default level", "?bis=10,11,12", 60, map[slots.Slot]int{slots.Head: 11, slots.Finger: 12}, 3},
		{"low level", "?level=20&bis=10,11,12", 20, map[slots.Slot]int{slots.Head: 10}, 3},
		{"clamped", "?level=99&bis=10", 60, map[slots.Slot]int{slots.Head: 10}, 1},
		{"unknown and repeated ids", "?bis=10,999,10,x", 60, map[slots.Slot]int{slots.Head: 10}, 1},
		{"no items", "", 60, map[slots.Slot]int{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/api/progression"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)

			var plan progression.Plan
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
			assert.Equal(t, tt.level, plan.Level)
			assert.Equal(t, tt.total, plan.Summary.Total)

			equipped := map[slots.Slot]int{}
			for slot, items := range plan.Equipped {
				equipped[slot] = items[0].ItemID
			}
			assert.Equal(t, tt.equipped, equipped)
		})
	}
}

func TestProgression_BadLevel(t *testing.T) {
	s, _ := newTestServer(t, loadedCatalogue(t), &fakeDisplayIDs{})

	rec := get(t, s, "/api/progression?level=max")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t, loadedCatalogue(t), &fakeDisplayIDs{})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, listener) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/data/items.json", listener.Addr()))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Lionheart Helm")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
