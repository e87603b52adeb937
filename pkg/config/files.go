package config

import (
	"fmt"
	"net/url"
	"os"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/mselser95/restock-sniper/pkg/types"
)

// LoadItems reads the YAML item configuration file. Prices are normalized at
// load time (numeric or currency-formatted strings both accepted); malformed
// entries reject the whole file rather than surfacing later in a worker.
func LoadItems(path string) ([]*types.MonitoredItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items file: %w", err)
	}

	var raw struct {
		Items []yaml.Node `yaml:"items"`
	}
	err = yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("parse items file %s: %w", path, err)
	}

	if len(raw.Items) == 0 {
		return nil, fmt.Errorf("items file %s contains no items", path)
	}

	items := make([]*types.MonitoredItem, 0, len(raw.Items))
	for idx := range raw.Items {
		// Omitted condition means "any", not the zero tier.
		item := &types.MonitoredItem{
			Condition: types.ConditionAny,
			Merchant:  types.MerchantAny,
		}

		err = raw.Items[idx].Decode(item)
		if err != nil {
			return nil, fmt.Errorf("items file %s, entry %d: %w", path, idx, err)
		}

		err = item.Validate()
		if err != nil {
			return nil, fmt.Errorf("items file %s, entry %d: %w", path, idx, err)
		}

		items = append(items, item)
	}

	return items, nil
}

// proxyFile matches the on-disk format: a list of groups, each a list of
// proxy URL strings.
type proxyFile struct {
	Proxies [][]string `json:"proxies"`
}

// LoadProxyGroups reads the JSON proxy configuration file and validates every
// proxy URL. An empty or missing file yields no groups, which the supervisor
// treats as a single unproxied worker slot.
func LoadProxyGroups(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read proxies file: %w", err)
	}

	var pf proxyFile
	err = json.Unmarshal(data, &pf)
	if err != nil {
		return nil, fmt.Errorf("parse proxies file %s: %w", path, err)
	}

	for gi, group := range pf.Proxies {
		if len(group) == 0 {
			return nil, fmt.Errorf("proxies file %s: group %d is empty", path, gi+1)
		}
		for _, p := range group {
			_, err = url.Parse(p)
			if err != nil {
				return nil, fmt.Errorf("proxies file %s: invalid proxy url %q: %w", path, p, err)
			}
		}
	}

	return pf.Proxies, nil
}

// LoadOfferIDs reads the optional offer-id cache file mapping item ids to
// previously observed listing ids. A missing path yields an empty map.
func LoadOfferIDs(path string) (map[string][]string, error) {
	if path == "" {
		return map[string][]string{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]string{}, nil
		}
		return nil, fmt.Errorf("read offer-id file: %w", err)
	}

	out := map[string][]string{}
	err = json.Unmarshal(data, &out)
	if err != nil {
		return nil, fmt.Errorf("parse offer-id file %s: %w", path, err)
	}

	return out, nil
}
