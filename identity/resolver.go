package identity

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	config "github.com/earnhub/rewards-backend/configs"
)

var lookupClient = &http.Client{Timeout: 5 * time.Second}

type lookupResponse struct {
	IP string `json:"ip"`
}

// ResolveFingerprint produces the network fingerprint for an actor. The
// gateway's observed remote address wins when it is a usable public address;
// otherwise the external lookup service is asked. When neither works a
// locally-synthesized fingerprint is returned — low confidence, but still
// subject to the uniqueness check, so verification never hard-fails on a
// lookup outage.
func ResolveFingerprint(accountID, remoteAddr string) string {
	if ip := net.ParseIP(remoteAddr); ip != nil && !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return remoteAddr
	}

	lookupURL := config.Config("NETWORK_LOOKUP_URL")
	if lookupURL == "" {
		lookupURL = "https://api.ipify.org?format=json"
	}

	resp, err := lookupClient.Get(lookupURL)
	if err != nil {
		log.Printf("⚠️ Network lookup failed for %s, using local fingerprint: %v", accountID, err)
		return localFingerprint(accountID)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️ Network lookup returned status %d for %s, using local fingerprint", resp.StatusCode, accountID)
		return localFingerprint(accountID)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.IP == "" {
		log.Printf("⚠️ Network lookup response unusable for %s, using local fingerprint", accountID)
		return localFingerprint(accountID)
	}
	return body.IP
}

func localFingerprint(accountID string) string {
	return fmt.Sprintf("local-%s", accountID)
}
