/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package calling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestNewClientValidatesServiceData(t *testing.T) {
	transport := newTestTransport(t)

	cfg := testConfig()
	cfg.ServiceData = ServiceData{Indicator: ServiceIndicatorContactCenter}
	if _, err := NewClient(transport, cfg); err == nil {
		t.Error("contact center without domain should be rejected")
	}

	cfg = testConfig()
	cfg.ServiceData = ServiceData{Indicator: ServiceIndicatorCalling, Domain: "not a domain"}
	if _, err := NewClient(transport, cfg); err == nil {
		t.Error("invalid domain should be rejected")
	}

	cfg = testConfig()
	cfg.ServiceData = ServiceData{}
	client, err := NewClient(transport, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if client.cfg.ServiceData.Indicator != ServiceIndicatorCalling {
		t.Errorf("indicator should default to calling, got %s", client.cfg.ServiceData.Indicator)
	}
}

func TestNewClientSetsMobiusHeaders(t *testing.T) {
	transport := newTestTransport(t)
	cfg := testConfig()

	if _, err := NewClient(transport, cfg); err != nil {
		t.Fatal(err)
	}
	if got := transport.Config.DefaultHeaders["spark-user-agent"]; got != "webex-calling/beta" {
		t.Errorf("spark-user-agent header %q", got)
	}
	if got := transport.Config.DefaultHeaders["cisco-device-url"]; got != cfg.ClientDeviceURI {
		t.Errorf("cisco-device-url header %q", got)
	}
}

func TestRegisterWithDiscovery(t *testing.T) {
	mobius := newScriptedMobius(t, "device-1")

	var query sync.Map
	discovery := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store("regionCode", r.URL.Query().Get("regionCode"))
		query.Store("countryCode", r.URL.Query().Get("countryCode"))
		json.NewEncoder(w).Encode(MobiusServers{
			Primary: MobiusServerURIs{Region: "test", URIs: []string{mobius.srv.URL}},
		})
	}))
	t.Cleanup(discovery.Close)

	cfg := testConfig()
	cfg.DiscoveryURL = discovery.URL + "/"
	cfg.DiscoveryRegion = "US-EAST"
	cfg.DiscoveryCountry = "US"

	client, err := NewClient(newTestTransport(t), cfg)
	if err != nil {
		t.Fatal(err)
	}

	registered := false
	client.On(string(ClientEventRegistered), func(interface{}) { registered = true })

	if err := client.Register(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Deregister(context.Background()) })

	if !client.registration.IsRegistered() {
		t.Fatal("expected registered client")
	}
	if got := client.registration.ActiveMobiusURL(); got != mobius.base() {
		t.Errorf("active url %s, want discovered server %s", got, mobius.base())
	}
	if !registered {
		t.Error("registered event not bridged to the client emitter")
	}
	if v, _ := query.Load("regionCode"); v != "US-EAST" {
		t.Errorf("regionCode %v not forwarded to discovery", v)
	}
	if v, _ := query.Load("countryCode"); v != "US" {
		t.Errorf("countryCode %v not forwarded to discovery", v)
	}
}

func TestRegisterFallsBackToDefaultRoster(t *testing.T) {
	mobius := newScriptedMobius(t, "device-1")

	discovery := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(discovery.Close)

	cfg := testConfig()
	cfg.DiscoveryURL = discovery.URL + "/"
	cfg.DiscoveryRegion = "US-EAST"
	cfg.DiscoveryCountry = "US"
	cfg.DefaultMobiusURL = mobius.srv.URL

	client, err := NewClient(newTestTransport(t), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Register(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Deregister(context.Background()) })

	if got := client.registration.ActiveMobiusURL(); got != mobius.base() {
		t.Errorf("fallback roster not used, active url %s", got)
	}
}

func TestRegisterRunsRegionLookup(t *testing.T) {
	mobius := newScriptedMobius(t, "device-1")

	mux := http.NewServeMux()
	mux.HandleFunc("/disc/myip", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ipInfo{IPv4: "198.51.100.7"})
	})
	mux.HandleFunc("/region/198.51.100.7", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(RegionInfo{ClientRegion: "EU-CENTRAL", CountryCode: "DE"})
	})
	mux.HandleFunc("/disc/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("regionCode") != "EU-CENTRAL" || r.URL.Query().Get("countryCode") != "DE" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(MobiusServers{
			Primary: MobiusServerURIs{Region: "EU-CENTRAL", URIs: []string{mobius.srv.URL}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.DiscoveryURL = srv.URL + "/disc/"
	cfg.RegionDiscoveryURL = srv.URL + "/region"

	client, err := NewClient(newTestTransport(t), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Register(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Deregister(context.Background()) })

	if got := client.registration.ActiveMobiusURL(); got != mobius.base() {
		t.Errorf("region-driven discovery not applied, active url %s", got)
	}
}

func TestMakeCall(t *testing.T) {
	mobius := newScriptedMobius(t, "device-1")

	cfg := testConfig()
	cfg.DiscoveryRegion = "US-EAST"
	cfg.DiscoveryCountry = "US"
	cfg.DefaultMobiusURL = mobius.srv.URL
	// Point discovery at the device server; the call-for-roster request 404s
	// and the default roster takes over.
	cfg.DiscoveryURL = mobius.srv.URL + "/nowhere/"

	client, err := NewClient(newTestTransport(t), cfg)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.MakeCall(CallDetails{Address: "5551234"}); err == nil {
		t.Error("call creation must require registration")
	}

	if err := client.Register(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Deregister(context.Background()) })

	if _, err := client.MakeCall(CallDetails{}); err == nil {
		t.Error("empty destination should be rejected")
	}

	call, err := client.MakeCall(CallDetails{Address: "5551234"})
	if err != nil {
		t.Fatal(err)
	}
	if call.Direction() != CallDirectionOutbound {
		t.Errorf("direction %s, want outbound", call.Direction())
	}
	if call.Destination().Type != CallTypeTEL {
		t.Errorf("type should default to tel, got %s", call.Destination().Type)
	}
	if client.GetCall(call.CorrelationID()) != call {
		t.Error("call not reachable by correlation id")
	}

	if client.GetConnectedCall() != nil {
		t.Error("no call is connected yet")
	}
	for _, evt := range []MachineEvent{CallEvtSendSetup, CallEvtRecvConnect, CallEvtEstablished} {
		if err := call.callMachine.Fire(evt); err != nil {
			t.Fatal(err)
		}
	}
	if client.GetConnectedCall() != call {
		t.Error("established call not returned")
	}
}
