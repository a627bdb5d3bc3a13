package mysql

const insertDeliverySQL = `
INSERT INTO delivery_journal (type, stars, strategy, http_status, reason)
VALUES (?, ?, ?, ?, ?)
`

const countDeliveriesSQL = `
SELECT strategy,
       (http_status >= 200 AND http_status < 400) AS delivered,
       COUNT(*)
FROM delivery_journal
GROUP BY strategy, delivered
`
