package popshops_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/matzehuels/popgraph/pkg/integrations/popshops"
	"github.com/matzehuels/popgraph/pkg/resource"
)

func ExampleCall_Get() {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": 200, "results": {"merchants": {"merchant": [
			{"id": 5, "name": "Acme", "country": "us"}
		]}}, "resources": {"countries": {"country": [{"id": "us", "name": "United States"}]}}}`))
	}))
	defer api.Close()

	call, err := popshops.New(popshops.Credentials{Account: "acct", Catalog: "cat"}, popshops.Options{
		BaseURL: api.URL,
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := call.Get(context.Background(), popshops.CallMerchants, url.Values{"keyword": {"tools"}}); err != nil {
		fmt.Println(err)
		return
	}

	m := call.ResourceByID(resource.KindMerchant, 5).(*resource.Merchant)
	fmt.Println(resource.Name(m), "-", resource.Name(m.Country()))

	err = call.Get(context.Background(), popshops.CallMerchants, nil)
	fmt.Println(err)
	// Output:
	// Acme - United States
	// DUPLICATE_CALL: call already performed; create a new call
}
