package service_test

import (
	"bytes"
	"encoding/csv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
	"github.com/spec-kit/helpdesk-triage/internal/service"
)

var _ = Describe("WriteFixedIssuesCSV", func() {
	It("writes a header and one row per issue", func() {
		fixedAt := time.Date(2024, 5, 1, 8, 15, 30, 0, time.FixedZone("CEST", 2*3600))
		issues := []domain.FixedIssue{
			{ID: 11, TicketID: 7, Title: "Printer, again", Category: "hardware", Priority: "Medium", FixedBy: "sam", FixedAt: fixedAt, Notes: "said \"fixed\""},
			{ID: 12, TicketID: 8, Title: "VPN", FixedBy: "admin", FixedAt: fixedAt},
		}

		var buf bytes.Buffer
		Expect(service.WriteFixedIssuesCSV(&buf, issues)).To(Succeed())

		records, err := csv.NewReader(&buf).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(Equal([][]string{
			service.FixedIssueCSVHeader,
			{"11", "7", "Printer, again", "hardware", "Medium", "sam", "2024-05-01T06:15:30Z", "said \"fixed\""},
			{"12", "8", "VPN", "", "", "admin", "2024-05-01T06:15:30Z", ""},
		}))
	})

	It("writes only the header when there is nothing to export", func() {
		var buf bytes.Buffer
		Expect(service.WriteFixedIssuesCSV(&buf, nil)).To(Succeed())

		Expect(buf.String()).To(Equal("id,ticket_id,title,category,priority,fixed_by,fixed_at,notes\n"))
	})
})
