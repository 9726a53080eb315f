package sqlinline

// The contents table carries two uniqueness guarantees the orchestrator
// relies on:
//
//	create unique index contents_one_shot_uq
//	  on contents(query_id, content_type)
//	  where content_type <> 'audio';
//	create unique index contents_derived_key_uq
//	  on contents(derived_key)
//	  where derived_key is not null;
//
// The first makes check-then-create atomic for one-shot types: the losing
// side of a race gets a unique violation instead of a second row.

const QSelectContentByQueryAndType = `--sql 7d2e45f1-3a8b-4c96-b2d7-5e913fa4c208
select id, query_id, content_type, title, payload, coalesce(storage_url, ''), coalesce(derived_key, ''), generation_count, degraded, generated_at, updated_at
from contents
where query_id = $1::uuid and content_type = $2::text
order by generated_at desc
limit 1;
`

const QSelectContentByID = `--sql a91b3d64-72c5-4f18-9e0a-b4d6f2c83157
select id, query_id, content_type, title, payload, coalesce(storage_url, ''), coalesce(derived_key, ''), generation_count, degraded, generated_at, updated_at
from contents
where id = $1::uuid
limit 1;
`

const QCountContentsByType = `--sql 5c4f90a2-e817-4b3d-8f65-1d29c7ab3e40
select coalesce(sum(greatest(generation_count, 1)), 0)::int
from contents
where query_id = $1::uuid and content_type = $2::text;
`

const QInsertContent = `--sql 2b6d81f3-04ae-47c2-95b8-6f3a1e5d92c7
insert into contents(id, query_id, content_type, title, payload, storage_url, derived_key, generation_count, degraded, generated_at, updated_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::jsonb, nullif($6::text, ''), nullif($7::text, ''), 1, $8::bool, now(), now())
returning generated_at;
`

const QUpsertContentByDerivedKey = `--sql e0c72a58-61bd-4f39-a4e1-8c95d3b7f612
insert into contents(id, query_id, content_type, title, payload, storage_url, derived_key, generation_count, degraded, generated_at, updated_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::jsonb, nullif($6::text, ''), $7::text, 1, false, now(), now())
on conflict (derived_key) where derived_key is not null do update
set payload = excluded.payload,
    title = excluded.title,
    storage_url = excluded.storage_url,
    generation_count = contents.generation_count + 1,
    updated_at = now()
returning id, query_id, content_type, title, payload, coalesce(storage_url, ''), coalesce(derived_key, ''), generation_count, degraded, generated_at, updated_at;
`

const QListContentsByQuery = `--sql 84f5b2c9-da03-4617-bc28-97e1f6a5d304
select id, query_id, content_type, title, payload, coalesce(storage_url, ''), coalesce(derived_key, ''), generation_count, degraded, generated_at, updated_at
from contents
where query_id = $1::uuid
order by generated_at asc;
`

const QDeleteContentByID = `--sql c7a94e16-58f2-4d0b-8361-2fb5d8e49a73
delete from contents
where id = $1::uuid and query_id = $2::uuid;
`
