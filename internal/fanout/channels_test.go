package fanout

import "testing"

func TestSanitizeChannelsDropsUnknownAndDuplicates(t *testing.T) {
	got := sanitizeChannels([]string{"bridges:sct", "nonsense", "bridges:sct", "boats"})
	want := []string{"bridges:sct", "boats"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestWantsBridgesBareChannelImpliesAllRegions(t *testing.T) {
	subs := map[string]bool{"bridges": true}
	if !wantsBridges(subs, "sct") || !wantsBridges(subs, "sbs") {
		t.Fatal("expected bare bridges channel to imply every region")
	}
}

func TestWantsBridgesRegionChannelIsScoped(t *testing.T) {
	subs := map[string]bool{"bridges:pc": true}
	if !wantsBridges(subs, "pc") {
		t.Fatal("expected a match on the subscribed region")
	}
	if wantsBridges(subs, "sct") {
		t.Fatal("expected no match on a different region")
	}
}

func TestWantsBoatsBareChannelImpliesAllRegions(t *testing.T) {
	subs := map[string]bool{"boats": true}
	if !wantsBoats(subs, "welland") || !wantsBoats(subs, "montreal") {
		t.Fatal("expected bare boats channel to imply every region")
	}
}

func TestWantsBoatsRegionChannelIsScoped(t *testing.T) {
	subs := map[string]bool{"boats:welland": true}
	if !wantsBoats(subs, "welland") {
		t.Fatal("expected a match on the subscribed region")
	}
	if wantsBoats(subs, "montreal") {
		t.Fatal("expected no match on a different region")
	}
}
