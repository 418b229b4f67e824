package jsondelta

import (
	"encoding/json"
	"testing"
)

func TestDiffOrderIsStable(t *testing.T) {
	left := `{"body":[],"bodyPath":"/ipfs/QmXhsUK6vGZrqarhw9Z8RCXqhmEpvtVByKtaYVarbDZ5zn","commit":{"author":{"id":"QmeL2mdVka1eahKENjehK6tBxkkpk5dNQ1qMcgWi7Hrb4B"},"message":"created dataset","path":"/ipfs/QmT8nerkkyqyiUurCPApFF1XW29ouvKKeCCQg3zwt4hrnp","qri":"cm:0","timestamp":"2001-01-01T01:01:01.000000001Z","title":"created dataset"},"meta":{"qri":"md:0","title":"example movie data"},"peername":"me","qri":"ds:0","structure":{"depth":2,"entries":8,"format":"csv","formatConfig":{"headerRow":true,"lazyQuotes":true},"schema":{"items":{"items":[{"title":"movie_title","type":"string"},{"title":"duration","type":"integer"}],"type":"array"},"type":"array"}}}`
	rite := `{"body":[["Avatar ",178],["Pirates of the Caribbean: At World's End ",169],["Spectre ",148],["The Dark Knight Rises ",164]],"bodyPath":"/ipfs/QmXhsUK6vGZrqarhw9Z8RCXqhmEpvtVByKtaYVarbDZ5zn","commit":{"author":{"id":"QmeL2mdVka1eahKENjehK6tBxkkpk5dNQ1qMcgWi7Hrb4B"},"qri":"cm:0","timestamp":"0001-01-01T00:00:00Z","title":""},"meta":{"qri":"md:0","title":"different title"},"name":"test_ds","peername":"me","qri":"ds:0","structure":{"depth":2,"entries":4,"format":"csv","formatConfig":{"headerRow":true},"schema":{"items":{"items":[{"title":"movie_title","type":"string"},{"title":"duration","type":"number"}],"type":"array"},"type":"array"}}}`

	var leftData, riteData interface{}
	if err := json.Unmarshal([]byte(left), &leftData); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(rite), &riteData); err != nil {
		t.Fatal(err)
	}

	var expect string
	for k := 0; k < 200; k++ {
		deltas, err := Diff(leftData, riteData)
		if err != nil {
			t.Fatal(err)
		}
		data, err := json.Marshal(deltas)
		if err != nil {
			t.Fatal(err)
		}
		if k == 0 {
			expect = string(data)
			continue
		}
		if string(data) != expect {
			t.Fatalf("run %d produced a different delta list.\nwant: %s\ngot:  %s", k, expect, data)
		}
	}

	// changes & deletions come first in document order, then additions
	deltas, _ := Diff(leftData, riteData)
	paths := deltas.Paths()
	if paths[0] != "$.commit.message" || paths[len(paths)-1] != "$.name" {
		t.Errorf("unexpected delta order: %v", paths)
	}
}
