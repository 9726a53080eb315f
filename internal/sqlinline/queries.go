package sqlinline

const QSelectQueryByID = `--sql 3f8a1c2e-9b4d-4e71-a6f3-28c5d90417be
select id, user_id, query_text, topic, complexity, status, created_at
from queries
where id = $1::uuid
limit 1;
`
