package beatservice

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/starford/collabeat/internal/models"
	"github.com/starford/collabeat/internal/testutil"
)

var testContract = models.Contract{TokenKey: "tk", ContractID: "mc1", PublicKey: "pk1"}

func history(n int) []models.Metadata {
	out := make([]models.Metadata, n)
	for i := range out {
		out[i] = models.Metadata{DataKey: fmt.Sprintf("dk%d", i), Alias: "", CID: fmt.Sprintf("c%d", i), PublicKey: "pk"}
	}
	return out
}

func testTx() models.Transaction {
	return models.Transaction{TokenID: "7", PublicKey: "pkTx", Alias: "beat", Data: "bafy-beat"}
}

func TestExecute_TooManyBeats(t *testing.T) {
	svc := NewService(nil, nil)
	for _, n := range []int{14, 15, 100} {
		res := svc.Execute(context.Background(), testContract, history(n), testTx())
		if res.Succeeded {
			t.Fatalf("n=%d: expected failure", n)
		}
		if res.ErrorText != "Can not be more than 10 beats" {
			t.Errorf("n=%d: error = %q", n, res.ErrorText)
		}
		if res.Entries == nil || len(res.Entries) != 0 {
			t.Errorf("n=%d: entries = %v, want empty", n, res.Entries)
		}
	}
}

func TestExecute_LimitIsInclusive(t *testing.T) {
	svc := NewService(nil, nil)
	res := svc.Execute(context.Background(), testContract, history(13), testTx())
	if !res.Succeeded {
		t.Fatalf("13 entries should pass: %q", res.ErrorText)
	}
}

func TestExecute_EmptyHistory(t *testing.T) {
	svc := NewService(nil, nil)
	res := svc.Execute(context.Background(), testContract, nil, testTx())
	if !res.Succeeded || res.ErrorText != "" {
		t.Fatalf("unexpected failure: %q", res.ErrorText)
	}
	want := []models.FinalMetadata{
		{PublicKey: "pk1", Alias: "name", Content: "Collabeat #7"},
		{PublicKey: "pk1", Alias: "description", Content: "Co-Create, Collaborate and Own The Beat"},
		{PublicKey: "pk1", Alias: "image", Content: "ipfs://"},
		{PublicKey: "pkTx", Alias: "beat", Content: "bafy-beat"},
	}
	if !reflect.DeepEqual(res.Entries, want) {
		t.Errorf("entries = %+v\nwant %+v", res.Entries, want)
	}
}

func TestExecute_ExistingHistory(t *testing.T) {
	svc := NewService(nil, nil)
	for _, n := range []int{1, 5, 13} {
		res := svc.Execute(context.Background(), testContract, history(n), testTx())
		if !res.Succeeded {
			t.Fatalf("n=%d: %q", n, res.ErrorText)
		}
		want := []models.FinalMetadata{{PublicKey: "pkTx", Alias: "beat", Content: "bafy-beat"}}
		if !reflect.DeepEqual(res.Entries, want) {
			t.Errorf("n=%d: entries = %+v", n, res.Entries)
		}
	}
}

func TestExecute_DoesNotFetch(t *testing.T) {
	stub := testutil.NewStubFetcher()
	svc := NewService(stub, nil)
	_ = svc.Execute(context.Background(), testContract, nil, testTx())
	if len(stub.Calls()) != 0 {
		t.Errorf("execute fetched content: %v", stub.Calls())
	}
}

func TestClone(t *testing.T) {
	if !NewService(nil, nil).Clone() {
		t.Error("Clone returned false")
	}
}

func TestValidateHistory(t *testing.T) {
	if err := ValidateHistory(MaxHistory); err != nil {
		t.Errorf("ValidateHistory(%d) = %v", MaxHistory, err)
	}
	if err := ValidateHistory(MaxHistory + 1); err == nil {
		t.Errorf("ValidateHistory(%d) = nil", MaxHistory+1)
	}
}
