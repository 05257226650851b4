package http

import (
	"net/http"
)

func (s *HandlerTestSuite) TestForward() {
	for _, path := range []string{"/api/cta", "/api/funnel"} {
		s.Run(path, func() {
			rec := s.do(http.MethodPost, path, `{"cta":"book-call","page":"/"}`, map[string]string{
				"Origin": allowedOrigin,
			})
			s.Require().Equal(http.StatusOK, rec.Code)
			s.Require().JSONEq(`{"ok":true}`, rec.Body.String())
			s.Require().Equal(allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			s.Require().Equal("POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
			s.Require().Equal(`{"cta":"book-call","page":"/"}`, string(s.hook.raw[len(s.hook.raw)-1]))
		})
	}
	s.Require().Zero(s.meta.calls())
}

func (s *HandlerTestSuite) TestForward_WebhookRejects() {
	s.hook.status = http.StatusNotFound

	rec := s.do(http.MethodPost, "/api/cta", `{}`, nil)
	s.Require().Equal(http.StatusBadGateway, rec.Code)
	s.Require().JSONEq(`{"ok":false}`, rec.Body.String())
}

func (s *HandlerTestSuite) TestForward_Errors() {
	cases := map[string]struct {
		method         string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		"preflight": {
			method:         http.MethodOptions,
			expectedStatus: http.StatusNoContent,
		},
		"get": {
			method:         http.MethodGet,
			expectedStatus: http.StatusMethodNotAllowed,
			expectedBody:   `{"ok":false,"error":"Method not allowed"}`,
		},
		"invalid json": {
			method:         http.MethodPost,
			body:           `{"cta":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"ok":false,"error":"Invalid JSON body"}`,
		},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			rec := s.do(tc.method, "/api/cta", tc.body, nil)
			s.Require().Equal(tc.expectedStatus, rec.Code)
			if tc.expectedBody == "" {
				s.Require().Empty(rec.Body.String())
				return
			}
			s.Require().JSONEq(tc.expectedBody, rec.Body.String())
		})
	}
	s.Require().Zero(s.hook.calls())
}

func (s *HandlerTestSuite) TestForward_MissingWebhook() {
	s.hookCfg.URL = ""
	s.build()

	rec := s.do(http.MethodPost, "/api/cta", `{}`, nil)
	s.Require().Equal(http.StatusInternalServerError, rec.Code)
	s.Require().JSONEq(`{"ok":false,"error":"MAKE_WEBHOOK_URL missing"}`, rec.Body.String())
}
