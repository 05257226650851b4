package http

import (
	"net/http"
)

func (s *HandlerTestSuite) TestCAPI_CORS() {
	cases := map[string]struct {
		method         string
		origin         string
		expectedOrigin string
	}{
		"allowed origin is echoed": {
			method:         http.MethodPost,
			origin:         allowedOrigin,
			expectedOrigin: allowedOrigin,
		},
		"unknown origin": {
			method: http.MethodPost,
			origin: "https://evil.example.com",
		},
		"origin prefix does not match": {
			method: http.MethodPost,
			origin: allowedOrigin + ".evil.com",
		},
		"no origin": {
			method: http.MethodPost,
		},
		"preflight from allowed origin": {
			method:         http.MethodOptions,
			origin:         allowedOrigin,
			expectedOrigin: allowedOrigin,
		},
		"error path from allowed origin": {
			method:         http.MethodPut,
			origin:         allowedOrigin,
			expectedOrigin: allowedOrigin,
		},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			headers := map[string]string{}
			if tc.origin != "" {
				headers["Origin"] = tc.origin
			}
			rec := s.do(tc.method, "/api/capi", `{"event":{"event_name":"Lead"}}`, headers)

			h := rec.Header()
			if tc.expectedOrigin == "" {
				s.Require().Empty(h.Values("Access-Control-Allow-Origin"))
			} else {
				s.Require().Equal(tc.expectedOrigin, h.Get("Access-Control-Allow-Origin"))
			}
			s.Require().Equal("Origin", h.Get("Vary"))
			s.Require().Equal("POST, OPTIONS, GET", h.Get("Access-Control-Allow-Methods"))
			s.Require().Equal("Content-Type", h.Get("Access-Control-Allow-Headers"))
		})
	}
}

func (s *HandlerTestSuite) TestCAPI_Options() {
	rec := s.do(http.MethodOptions, "/api/capi?ping=1&test=1", `not even json`, map[string]string{
		"X-Meta-Test": "1",
	})
	s.Require().Equal(http.StatusNoContent, rec.Code)
	s.Require().Empty(rec.Body.String())
	s.Require().Zero(s.meta.calls())
}

func (s *HandlerTestSuite) TestCAPI_Get() {
	cases := map[string]struct {
		target         string
		expectedStatus int
		expectedBody   string
	}{
		"ping": {
			target:         "/api/capi?ping=1",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"ok":true,"ping":"pong"}`,
		},
		"ping without value": {
			target:         "/api/capi?ping",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"ok":true,"ping":"pong"}`,
		},
		"no ping": {
			target:         "/api/capi?foo=1",
			expectedStatus: http.StatusMethodNotAllowed,
			expectedBody:   `{"ok":false,"error":"Use POST for events"}`,
		},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			rec := s.do(http.MethodGet, tc.target, "", nil)
			s.Require().Equal(tc.expectedStatus, rec.Code)
			s.Require().Equal("application/json", rec.Header().Get("Content-Type"))
			s.Require().JSONEq(tc.expectedBody, rec.Body.String())
		})
	}
}

func (s *HandlerTestSuite) TestCAPI_OtherMethods() {
	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		s.Run(method, func() {
			rec := s.do(method, "/api/capi", `{"event":{"event_name":"Lead"}}`, nil)
			s.Require().Equal(http.StatusMethodNotAllowed, rec.Code)
			s.Require().JSONEq(`{"ok":false,"error":"Method not allowed"}`, rec.Body.String())
		})
	}
	s.Require().Zero(s.meta.calls())
}

func (s *HandlerTestSuite) TestCAPI_PostSingleEvent() {
	rec := s.do(http.MethodPost, "/api/capi", `{"event":{"event_name":"Purchase","event_time":1700000000}}`, map[string]string{
		"X-Forwarded-For": "1.2.3.4, 5.6.7.8",
		"User-Agent":      "Mozilla/5.0",
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal("application/json", rec.Header().Get("Content-Type"))
	s.Require().JSONEq(`{"ok":true,"meta":{"events_received":1,"fbtrace_id":"trace"}}`, rec.Body.String())

	s.Require().Equal(1, s.meta.calls())
	s.Require().Equal("access_token=token", s.meta.query[0])
	s.Require().JSONEq(`{
		"data": [{
			"event_name": "Purchase",
			"event_time": 1700000000,
			"action_source": "website",
			"user_data": {
				"client_ip_address": "1.2.3.4",
				"client_user_agent": "Mozilla/5.0"
			}
		}]
	}`, string(s.meta.raw[0]))
}

func (s *HandlerTestSuite) TestCAPI_PostKeepsOrder() {
	rec := s.do(http.MethodPost, "/api/capi", `{"events":[{"event_name":"Purchase"},{"event_name":"Lead"}]}`, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	data, ok := s.meta.lastBody()["data"].([]any)
	s.Require().True(ok)
	s.Require().Len(data, 2)
	s.Require().Equal("Purchase", data[0].(map[string]any)["event_name"])
	s.Require().Equal("Lead", data[1].(map[string]any)["event_name"])
}

func (s *HandlerTestSuite) TestCAPI_PostPeerAddressFallback() {
	rec := s.do(http.MethodPost, "/api/capi", `{"event":{"event_name":"Lead"}}`, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	ev := s.meta.lastBody()["data"].([]any)[0].(map[string]any)
	ud := ev["user_data"].(map[string]any)
	// httptest.NewRequest uses 192.0.2.1:1234 as the peer.
	s.Require().Equal("192.0.2.1", ud["client_ip_address"])
}

func (s *HandlerTestSuite) TestCAPI_PostRelocatesTopLevelIdentity() {
	rec := s.do(http.MethodPost, "/api/capi", `{"event":{"event_name":"Lead","client_ip_address":"9.9.9.9"}}`, map[string]string{
		"X-Forwarded-For": "1.2.3.4",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	ev := s.meta.lastBody()["data"].([]any)[0].(map[string]any)
	s.Require().NotContains(ev, "client_ip_address")
	s.Require().Equal("9.9.9.9", ev["user_data"].(map[string]any)["client_ip_address"])
}

func (s *HandlerTestSuite) TestCAPI_PostErrors() {
	cases := map[string]struct {
		body           string
		expectedStatus int
		expectedBody   string
	}{
		"invalid json": {
			body:           `{"event":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"ok":false,"error":"Invalid JSON body"}`,
		},
		"missing events": {
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"ok":false,"error":"Missing 'events' array or 'event' object"}`,
		},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			rec := s.do(http.MethodPost, "/api/capi", tc.body, nil)
			s.Require().Equal(tc.expectedStatus, rec.Code)
			s.Require().JSONEq(tc.expectedBody, rec.Body.String())
		})
	}
	s.Require().Zero(s.meta.calls())
}

func (s *HandlerTestSuite) TestCAPI_PostMissingCredentials() {
	s.metaCfg.AccessToken = ""
	s.build()

	rec := s.do(http.MethodPost, "/api/capi", `{`, nil)
	s.Require().Equal(http.StatusInternalServerError, rec.Code)
	s.Require().JSONEq(`{"ok":false,"error":"Server missing META env vars"}`, rec.Body.String())
	s.Require().Zero(s.meta.calls())
}

func (s *HandlerTestSuite) TestCAPI_PostOnlyBlockedEvents() {
	rec := s.do(http.MethodPost, "/api/capi", `{"event":{"event_name":"VideoProgress"}}`, map[string]string{
		"Origin": allowedOrigin,
	})
	s.Require().Equal(http.StatusNoContent, rec.Code)
	s.Require().Empty(rec.Body.String())
	s.Require().Empty(rec.Header().Get("Content-Type"))
	s.Require().Equal(allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	s.Require().Zero(s.meta.calls())
}

func (s *HandlerTestSuite) TestCAPI_PostTestMode() {
	cases := map[string]struct {
		target   string
		headers  map[string]string
		expected any
	}{
		"query flag": {
			target:   "/api/capi?test=1",
			expected: "TEST777",
		},
		"header flag": {
			target:   "/api/capi",
			headers:  map[string]string{"X-Meta-Test": "1"},
			expected: "TEST777",
		},
		"other query value": {
			target: "/api/capi?test=true",
		},
		"not requested": {
			target: "/api/capi",
		},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			rec := s.do(http.MethodPost, tc.target, `{"event":{"event_name":"Lead"}}`, tc.headers)
			s.Require().Equal(http.StatusOK, rec.Code)
			s.Require().Equal(tc.expected, s.meta.lastBody()["test_event_code"])
		})
	}
}

func (s *HandlerTestSuite) TestCAPI_PostUpstreamRejects() {
	s.meta.status = http.StatusForbidden
	s.meta.response = `{"error":{"message":"Invalid OAuth access token","code":190}}`

	rec := s.do(http.MethodPost, "/api/capi", `{"event":{"event_name":"Lead"}}`, nil)
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	s.Require().JSONEq(`{"ok":false,"meta":{"error":{"message":"Invalid OAuth access token","code":190}}}`, rec.Body.String())
}

func (s *HandlerTestSuite) TestCAPI_PostUpstreamMalformedJSON() {
	s.meta.response = `<html>oops</html>`

	rec := s.do(http.MethodPost, "/api/capi", `{"event":{"event_name":"Lead"}}`, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().JSONEq(`{"ok":true,"meta":{}}`, rec.Body.String())
}

func (s *HandlerTestSuite) TestCAPI_PostUpstreamUnreachable() {
	s.metaSrv.Close()

	rec := s.do(http.MethodPost, "/api/capi", `{"event":{"event_name":"Lead"}}`, nil)
	s.Require().Equal(http.StatusInternalServerError, rec.Code)
	s.Require().Contains(rec.Body.String(), `"ok":false`)
	s.Require().Contains(rec.Body.String(), "connect")
	s.Require().NotContains(rec.Body.String(), "token")
	s.Require().Zero(s.meta.calls())
}

func (s *HandlerTestSuite) TestCheckout() {
	rec := s.do(http.MethodPost, "/api/thrivecart?test=1", `{
		"order_id": "ord-9",
		"order_total": "99.00",
		"product_id": "7",
		"customer": {"email": "test@example.com"}
	}`, map[string]string{
		"X-Forwarded-For": "4.4.4.4",
		"User-Agent":      "ThriveCart",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	body := s.meta.lastBody()
	s.Require().Equal("TEST777", body["test_event_code"])

	ev := body["data"].([]any)[0].(map[string]any)
	s.Require().Equal("Purchase", ev["event_name"])
	s.Require().Equal(map[string]any{
		"value":       99.0,
		"currency":    "EUR",
		"order_id":    "ord-9",
		"content_ids": []any{"tc_7"},
	}, ev["custom_data"])
	s.Require().Equal(map[string]any{
		"em":                "973dfe463ec85785f5f95af5ba3906eedb2d931c24e69824a89ea65dba4e813b",
		"client_ip_address": "4.4.4.4",
		"client_user_agent": "ThriveCart",
	}, ev["user_data"])
}

func (s *HandlerTestSuite) TestCheckout_FormBody() {
	rec := s.do(http.MethodPost, "/api/thrivecart",
		"order_id=ord-9&order_total=99.00&customer%5Bemail%5D=test%40example.com",
		map[string]string{
			"Content-Type":    "application/x-www-form-urlencoded",
			"X-Forwarded-For": "4.4.4.4",
		})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal(1, s.meta.calls())

	ev := s.meta.lastBody()["data"].([]any)[0].(map[string]any)
	s.Require().Equal("Purchase", ev["event_name"])
	s.Require().Equal(map[string]any{
		"value":    99.0,
		"currency": "EUR",
		"order_id": "ord-9",
	}, ev["custom_data"])
	s.Require().Equal(map[string]any{
		"em":                "973dfe463ec85785f5f95af5ba3906eedb2d931c24e69824a89ea65dba4e813b",
		"client_ip_address": "4.4.4.4",
	}, ev["user_data"])
}

func (s *HandlerTestSuite) TestCheckout_Methods() {
	rec := s.do(http.MethodOptions, "/api/thrivecart", "", nil)
	s.Require().Equal(http.StatusNoContent, rec.Code)
	s.Require().Equal("POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))

	rec = s.do(http.MethodGet, "/api/thrivecart", "", nil)
	s.Require().Equal(http.StatusMethodNotAllowed, rec.Code)
	s.Require().Zero(s.meta.calls())
}

func (s *HandlerTestSuite) TestReady() {
	rec := s.do(http.MethodGet, "/_/ready", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal("OK", rec.Body.String())
}

func (s *HandlerTestSuite) TestRequestID() {
	rec := s.do(http.MethodGet, "/api/capi?ping=1", "", map[string]string{"X-Request-ID": "req-1"})
	s.Require().Equal("req-1", rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/api/capi?ping=1", "", nil)
	s.Require().NotEmpty(rec.Header().Get("X-Request-ID"))
}
